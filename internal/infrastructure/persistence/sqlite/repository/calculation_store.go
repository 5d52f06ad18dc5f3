package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"radassist/internal/errs"
	"radassist/internal/infrastructure/persistence/sqlite/model"
	"radassist/internal/infrastructure/persistence/sqlite/schema"
	"radassist/internal/ports"
)

const statsRecentLimit = 5

type CalculationStore struct {
	db     *gorm.DB
	schema *schema.Manager
	now    func() time.Time
}

var _ ports.CalculationStore = (*CalculationStore)(nil)

func NewCalculationStore(db *gorm.DB, schema *schema.Manager) *CalculationStore {
	return &CalculationStore{db: db, schema: schema, now: time.Now}
}

func (s *CalculationStore) resolve(ctx context.Context) (*gorm.DB, error) {
	db, err := dbFromContext(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if err := s.schema.Ensure(ctx); err != nil {
		return nil, errs.Wrap(err, "ensure schema")
	}
	return db, nil
}

func (s *CalculationStore) Save(ctx context.Context, calc ports.Calculation) (uint64, error) {
	db, err := s.resolve(ctx)
	if err != nil {
		return 0, err
	}

	date := calc.Date
	if date.IsZero() {
		date = s.now()
	}

	row := model.Calculation{
		Dose:        calc.Dose,
		Fractions:   calc.Fractions,
		AlphaBeta:   calc.AlphaBeta,
		BED:         calc.BED,
		EQD2:        calc.EQD2,
		TissueLabel: calc.TissueLabel,
		Date:        formatTime(date),
	}
	if err := db.Create(&row).Error; err != nil {
		return 0, errs.Wrap(err, "insert calculation")
	}
	return row.ID, nil
}

func (s *CalculationStore) List(ctx context.Context, limit int) ([]ports.Calculation, error) {
	db, err := s.resolve(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Calculation{}).
		Order("date desc").Order("id desc")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []model.Calculation
	if err := query.Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query calculations")
	}
	return mapCalculations(rows), nil
}

func (s *CalculationStore) Delete(ctx context.Context, id uint64) error {
	db, err := s.resolve(ctx)
	if err != nil {
		return err
	}

	result := db.Where("id = ?", id).Delete(&model.Calculation{})
	if result.Error != nil {
		return errs.Wrap(result.Error, "delete calculation")
	}
	if result.RowsAffected == 0 {
		return ports.ErrCalculationNotFound
	}
	return nil
}

func (s *CalculationStore) DeleteAll(ctx context.Context) (int64, error) {
	db, err := s.resolve(ctx)
	if err != nil {
		return 0, err
	}

	result := db.Where("1 = 1").Delete(&model.Calculation{})
	if result.Error != nil {
		return 0, errs.Wrap(result.Error, "delete all calculations")
	}
	return result.RowsAffected, nil
}

func (s *CalculationStore) Stats(ctx context.Context) (ports.CalculationStats, error) {
	db, err := s.resolve(ctx)
	if err != nil {
		return ports.CalculationStats{}, err
	}

	var total int64
	if err := db.Model(&model.Calculation{}).Count(&total).Error; err != nil {
		return ports.CalculationStats{}, errs.Wrap(err, "count calculations")
	}

	today := s.now().UTC().Format("2006-01-02")
	var todayCount int64
	if err := db.Model(&model.Calculation{}).
		Where("date LIKE ?", today+"%").
		Count(&todayCount).Error; err != nil {
		return ports.CalculationStats{}, errs.Wrap(err, "count today calculations")
	}

	recent, err := s.List(ctx, statsRecentLimit)
	if err != nil {
		return ports.CalculationStats{}, err
	}

	return ports.CalculationStats{Total: total, Today: todayCount, Recent: recent}, nil
}

func mapCalculations(rows []model.Calculation) []ports.Calculation {
	calcs := make([]ports.Calculation, 0, len(rows))
	for _, row := range rows {
		calcs = append(calcs, ports.Calculation{
			ID:          row.ID,
			Dose:        row.Dose,
			Fractions:   row.Fractions,
			AlphaBeta:   row.AlphaBeta,
			BED:         row.BED,
			EQD2:        row.EQD2,
			TissueLabel: row.TissueLabel,
			Date:        parseTime(row.Date),
		})
	}
	return calcs
}
