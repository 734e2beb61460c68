package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aulavision/aulavision-lms/internal/catalog"
	"github.com/aulavision/aulavision-lms/internal/rbac"
)

func CreateCourseHandler(store *catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teacher := rbac.SubjectFromContext(r.Context())
		var req struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if req.Name == "" {
			http.Error(w, "name required", 400)
			return
		}
		c, err := store.CreateCourse(r.Context(), catalog.Course{
			Name:        req.Name,
			Description: req.Description,
			TeacherID:   teacher,
			Active:      true,
		})
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		writeJSON(w, 201, c)
	}
}

func ListCoursesHandler(store *catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// teachers see their own courses, everyone else the full catalog
		teacherID := ""
		if rbac.RoleFromContext(r.Context()) == "teacher" {
			teacherID = rbac.SubjectFromContext(r.Context())
		}
		courses, err := store.ListCourses(r.Context(), teacherID)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		writeJSON(w, 200, courses)
	}
}

func CreateModuleHandler(store *catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID := chi.URLParam(r, "courseID")
		var req struct {
			Name     string `json:"name"`
			Position int    `json:"position"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if req.Name == "" {
			http.Error(w, "name required", 400)
			return
		}
		m, err := store.CreateModule(r.Context(), catalog.Module{
			CourseID: courseID,
			Name:     req.Name,
			Position: req.Position,
		})
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				http.Error(w, "course not found", 404)
				return
			}
			http.Error(w, err.Error(), 500)
			return
		}
		writeJSON(w, 201, m)
	}
}

func ListModulesHandler(store *catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		modules, err := store.ListModules(r.Context(), chi.URLParam(r, "courseID"))
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		writeJSON(w, 200, modules)
	}
}

func CreateResourceHandler(store *catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ModuleID   string `json:"module_id"`
			Title      string `json:"title"`
			Kind       string `json:"kind"`
			ContentURL string `json:"content_url"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if req.ModuleID == "" || req.Title == "" {
			http.Error(w, "module_id and title required", 400)
			return
		}
		if !catalog.ValidResourceKind(req.Kind) {
			http.Error(w, "invalid kind", 400)
			return
		}
		res, err := store.CreateResource(r.Context(), catalog.Resource{
			ModuleID:   req.ModuleID,
			Title:      req.Title,
			Kind:       req.Kind,
			ContentURL: req.ContentURL,
		})
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				http.Error(w, "module not found", 404)
				return
			}
			http.Error(w, err.Error(), 500)
			return
		}
		writeJSON(w, 201, res)
	}
}

func ListResourcesHandler(store *catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resources, err := store.ListResources(r.Context(), r.URL.Query().Get("module_id"))
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		writeJSON(w, 200, resources)
	}
}

func GetResourceHandler(store *catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := store.GetResource(r.Context(), chi.URLParam(r, "resourceID"))
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				http.Error(w, "resource not found", 404)
				return
			}
			http.Error(w, err.Error(), 500)
			return
		}
		writeJSON(w, 200, res)
	}
}

func DeleteResourceHandler(store *catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := store.DeleteResource(r.Context(), chi.URLParam(r, "resourceID"))
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				http.Error(w, "resource not found", 404)
				return
			}
			http.Error(w, err.Error(), 500)
			return
		}
		w.WriteHeader(204)
	}
}
