// Package invariant enforces mutation-time business rules atomically
// with the writes they govern. Every entry point runs inside a single
// transaction; any failing check aborts the whole write.
package invariant

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"dealerops/internal/model"
)

// Pipeline executes per-entity checks and derived side effects.
type Pipeline struct {
	db  *gorm.DB
	now func() time.Time
	loc *time.Location
}

// NewPipeline returns a Pipeline writing through db. loc is the
// governing time zone for due-date validation; nil means time.Local.
func NewPipeline(db *gorm.DB, loc *time.Location) *Pipeline {
	if loc == nil {
		loc = time.Local
	}
	return &Pipeline{db: db, now: time.Now, loc: loc}
}

// WithClock overrides the wall-clock source. Tests use it to pin "now".
func (p *Pipeline) WithClock(now func() time.Time) *Pipeline {
	p.now = now
	return p
}

// WithTx returns a copy of the pipeline bound to tx, so its checks and
// writes join a caller's transaction. Entry points on the copy nest via
// savepoints instead of opening a second transaction.
func (p *Pipeline) WithTx(tx *gorm.DB) *Pipeline {
	bound := *p
	bound.db = tx
	return &bound
}

// lockTenant loads the tenant row with an exclusive row lock so that
// aggregate-dependent checks (membership count, primary demotion) are
// serialized per tenant. SQLite has no row locks; its single-writer
// transaction model already serializes these, so the clause is only
// added on postgres.
func (p *Pipeline) lockTenant(tx *gorm.DB, tenantID uint) (*model.Tenant, error) {
	q := tx
	if tx.Dialector.Name() == "postgres" {
		q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var tenant model.Tenant
	if err := q.First(&tenant, tenantID).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}
