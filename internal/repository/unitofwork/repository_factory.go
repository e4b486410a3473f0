package unitofwork

import "context"

// RepositoryFactory hands each request its own UnitOfWork. Services hold the
// factory, never a UnitOfWork, so transaction lifetime stays scoped to one
// ask, one submission, one curation call.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}
