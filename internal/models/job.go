package models

// Job is a listing as returned by the backend. Fields are passed through
// unmodified; ID is the only one the client relies on.
type Job struct {
	ID              int64   `json:"id"`
	Title           string  `json:"title"`
	Company         *string `json:"company"`
	Location        *string `json:"location"`
	JobLink         string  `json:"job_link"`
	PostedDate      *string `json:"posted_date"`
	ExperienceLevel *string `json:"experience_level,omitempty"`
	JobType         *string `json:"job_type,omitempty"`
	Keywords        *string `json:"keywords,omitempty"`
	CreatedAt       string  `json:"created_at,omitempty"`
}

type AlertLog struct {
	ID        int64   `json:"id"`
	JobID     int64   `json:"job_id"`
	CreatedAt string  `json:"created_at"`
	Channel   string  `json:"channel"`
	Status    string  `json:"status"`
	Message   *string `json:"message"`
}

func ExtractJobIDs(jobs []Job) []int64 {
	ids := make([]int64, len(jobs))
	for i, job := range jobs {
		ids[i] = job.ID
	}
	return ids
}

// StringValue dereferences an optional string field.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
