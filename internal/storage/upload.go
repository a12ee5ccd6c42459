package storage

import "time"

type UploadBatch struct {
	ID              int64     `json:"id"`
	SubmissionID    string    `json:"submissionId"`
	Filename        string    `json:"filename"`
	UploadedAt      time.Time `json:"uploadedAt"`
	RecordsImported int       `json:"recordsImported"`
	Errors          []string  `json:"errors"`
	Warnings        []string  `json:"warnings"`
}
