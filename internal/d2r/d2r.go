// Package d2r stores results of the D2-R concentration test and recomputes
// its aggregate indices from the row-level counts.
package d2r

// Row holds one test row: targets revised (TR), targets correctly marked
// (TA), omission errors (EO) and commission errors (EC).
type Row struct {
	RowNumber int `json:"row_number"`
	TR        int `json:"tr"`
	TA        int `json:"ta"`
	EO        int `json:"eo"`
	EC        int `json:"ec"`
}

type Result struct {
	ID             string  `json:"id"`
	LearnerID      string  `json:"learner_id"`
	CourseID       string  `json:"course_id,omitempty"`
	ResourceID     string  `json:"resource_id,omitempty"`
	Rows           []Row   `json:"rows,omitempty"`
	TRTotal        int     `json:"tr_total"`
	TATotal        int     `json:"ta_total"`
	EOTotal        int     `json:"eo_total"`
	ECTotal        int     `json:"ec_total"`
	Tot            int     `json:"tot"`
	Con            float64 `json:"con"`
	Var            float64 `json:"var"`
	Interpretation string  `json:"interpretation,omitempty"`
	CreatedAt      int64   `json:"created_at"`
}

// Context is the flattened snapshot the adaptive pipeline embeds into
// generated evaluations.
type Context struct {
	Con     float64 `json:"con"`
	Tot     int     `json:"tot"`
	Var     float64 `json:"var"`
	TRTotal int     `json:"tr_total"`
	TATotal int     `json:"ta_total"`
	EOTotal int     `json:"eo_total"`
	ECTotal int     `json:"ec_total"`
	Date    int64   `json:"date"`
}

// Recompute derives all aggregates from the rows. Caller-supplied totals are
// never trusted; this is the integrity invariant of the test store.
//
//	tot = Σtr;  con = Σta − Σec;  var = max(tr) − min(tr)
func Recompute(rows []Row) (trTotal, taTotal, eoTotal, ecTotal, tot int, con, variability float64) {
	if len(rows) == 0 {
		return
	}
	minTR, maxTR := rows[0].TR, rows[0].TR
	for _, r := range rows {
		trTotal += r.TR
		taTotal += r.TA
		eoTotal += r.EO
		ecTotal += r.EC
		if r.TR < minTR {
			minTR = r.TR
		}
		if r.TR > maxTR {
			maxTR = r.TR
		}
	}
	tot = trTotal
	con = float64(taTotal - ecTotal)
	variability = float64(maxTR - minTR)
	return
}
