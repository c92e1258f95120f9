package resumes

import "context"

// Row is the raw persisted form of a generated resume; JSON columns stay
// encoded at this layer.
type Row struct {
	ID           int64
	JobID        int64
	JobTitle     *string
	CompanyName  *string
	MatchScore   *float64
	ContentJSON  []byte
	AnalysisJSON []byte
	Language     string
	CreatedAt    string
}

// Repo is the persistence boundary for generated resumes.
type Repo interface {
	Insert(ctx context.Context, row Row) (int64, error)
	Get(ctx context.Context, id int64) (*Row, error)
	History(ctx context.Context) ([]HistoryItem, error)
	UpdateContent(ctx context.Context, id int64, contentJSON []byte) error
	Delete(ctx context.Context, id int64) error
}
