package model

// ReferenceHistory rows are append-only; previous_* columns are populated
// for UPDATE and DELETE entries only.
type ReferenceHistory struct {
	ID                  uint64   `gorm:"column:id;primaryKey;autoIncrement"`
	Action              string   `gorm:"column:action;type:text;not null"`
	Tissue              string   `gorm:"column:tissue;type:text;not null"`
	AlphaBeta           float64  `gorm:"column:alphaBeta;not null"`
	Description         string   `gorm:"column:description;type:text;not null;default:''"`
	PreviousTissue      *string  `gorm:"column:previous_tissue;type:text"`
	PreviousAlphaBeta   *float64 `gorm:"column:previous_alphaBeta"`
	PreviousDescription *string  `gorm:"column:previous_description;type:text"`
	Timestamp           string   `gorm:"column:timestamp;type:text;not null;index"`
}

func (ReferenceHistory) TableName() string {
	return "reference_history"
}
