package jobs

import "context"

// Repo is the persistence boundary for jobs and their version history.
type Repo interface {
	List(ctx context.Context) ([]ListItem, error)
	Get(ctx context.Context, id int64) (*Job, error)
	Create(ctx context.Context, originalText string) (*Job, error)
	Update(ctx context.Context, id int64, in UpdateInput) (*Job, error)
	Delete(ctx context.Context, id int64) error

	Versions(ctx context.Context, jobID int64) ([]Version, error)
	GetVersion(ctx context.Context, jobID, versionID int64) (*Version, error)

	Resumes(ctx context.Context, jobID int64) ([]ResumeSummary, error)

	SaveAnalysis(ctx context.Context, analysisJSON []byte, title, companyName string, originalText *string, jobID *int64) (int64, error)
}
