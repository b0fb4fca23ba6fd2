package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/gradeplan/internal/db"
	"github.com/alexanderramin/gradeplan/internal/importer"
	"github.com/alexanderramin/gradeplan/internal/logger"
	"github.com/alexanderramin/gradeplan/internal/repository"
)

type seedService struct {
	uow      db.UnitOfWork
	log      logger.Logger
	observer UseCaseObserver
}

func NewSeedService(uow db.UnitOfWork, log logger.Logger, observers ...UseCaseObserver) SeedService {
	return &seedService{
		uow:      uow,
		log:      logger.OrNop(log),
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *seedService) ImportFile(ctx context.Context, path string) (*SeedResult, error) {
	schema, err := importer.LoadSeedSchema(path)
	if err != nil {
		return nil, fmt.Errorf("loading seed file %s: %w", path, err)
	}
	return s.Import(ctx, schema)
}

// Import writes employees and orders in one transaction. Records whose ID
// already exists are left untouched and counted as skipped.
func (s *seedService) Import(ctx context.Context, schema *importer.SeedSchema) (res *SeedResult, err error) {
	startedAt := time.Now()
	res = &SeedResult{}
	defer func() {
		observe(ctx, s.observer, "import-seed", startedAt, map[string]any{
			"employees_created": res.EmployeesCreated,
			"orders_created":    res.OrdersCreated,
		}, err)
	}()

	if errs := importer.ValidateSeedSchema(schema); len(errs) > 0 {
		return res, fmt.Errorf("invalid seed: %w", errors.Join(errs...))
	}
	seed, err := importer.Convert(schema, time.Now().UTC())
	if err != nil {
		return res, err
	}

	var out SeedResult
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		out = SeedResult{}
		employees := repository.NewSQLiteEmployeeRepo(tx)
		orders := repository.NewSQLiteOrderRepo(tx)

		for _, e := range seed.Employees {
			_, getErr := employees.GetByID(ctx, e.ID)
			created, err := createIfMissing(getErr, func() error {
				return employees.Create(ctx, e)
			})
			if err != nil {
				return fmt.Errorf("employee %s: %w", e.ID, err)
			}
			if created {
				out.EmployeesCreated++
			} else {
				out.EmployeesSkipped++
			}
		}
		for _, o := range seed.Orders {
			_, getErr := orders.GetByID(ctx, o.ID)
			created, err := createIfMissing(getErr, func() error {
				return orders.Create(ctx, o)
			})
			if err != nil {
				return fmt.Errorf("order %s: %w", o.ID, err)
			}
			if created {
				out.OrdersCreated++
			} else {
				out.OrdersSkipped++
			}
		}
		return nil
	})
	if err != nil {
		return res, err
	}
	*res = out
	s.log.Infof("seed imported: %d employees (%d existing), %d orders (%d existing)",
		res.EmployeesCreated, res.EmployeesSkipped, res.OrdersCreated, res.OrdersSkipped)
	return res, nil
}

// createIfMissing runs create when the lookup reported ErrNotFound. Any
// other lookup error aborts the import.
func createIfMissing(lookupErr error, create func() error) (bool, error) {
	if lookupErr == nil {
		return false, nil
	}
	if !errors.Is(lookupErr, repository.ErrNotFound) {
		return false, lookupErr
	}
	if err := create(); err != nil {
		return false, err
	}
	return true, nil
}
