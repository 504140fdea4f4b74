// Package catalog fetches course records from the e-learning platform API.
// It degrades through a fallback chain: primary endpoint, per-user endpoint,
// local snapshot, built-in dataset. FetchCourses never returns an empty
// result, so downstream matching always has candidates to rank.
package catalog

import "encoding/json"

// Course is one course record as served by the catalog API.
// Category may be absent on the wire; it is then resolved best-effort
// through the course's module.
type Course struct {
	ID          string `json:"_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ModuleID    string `json:"module,omitempty"`
	CategoryID  string `json:"category,omitempty"`
}

// dataEnvelope is the catalog API response wrapper. The data field holds
// either a list of courses or a single course object depending on endpoint.
type dataEnvelope struct {
	Data courseList `json:"data"`
}

// courseList accepts both a JSON array and a single course object,
// since the per-user endpoint may return either shape.
type courseList []Course

func (cl *courseList) UnmarshalJSON(data []byte) error {
	var many []Course
	if err := json.Unmarshal(data, &many); err == nil {
		*cl = many
		return nil
	}

	var one Course
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	if one.ID == "" && one.Title == "" {
		*cl = nil
		return nil
	}
	*cl = courseList{one}
	return nil
}

// moduleEnvelope is the /api/modules/{id} response wrapper.
type moduleEnvelope struct {
	Data struct {
		ID       string `json:"_id"`
		Title    string `json:"title"`
		Category string `json:"category"`
	} `json:"data"`
}
