package catalog

type Course struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	TeacherID   string `json:"teacher_id,omitempty"`
	Active      bool   `json:"active"`
	CreatedAt   int64  `json:"created_at"`
}

type Module struct {
	ID       string `json:"id"`
	CourseID string `json:"course_id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

// Resource kinds mirror what the attention recorder and the evaluation
// generator understand: video, reading, quiz.
type Resource struct {
	ID         string `json:"id"`
	ModuleID   string `json:"module_id"`
	Title      string `json:"title"`
	Kind       string `json:"kind"`
	ContentURL string `json:"content_url,omitempty"`
	CreatedAt  int64  `json:"created_at"`
}

var resourceKinds = map[string]bool{"video": true, "reading": true, "quiz": true}

func ValidResourceKind(kind string) bool { return resourceKinds[kind] }
