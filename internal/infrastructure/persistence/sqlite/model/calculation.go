package model

type Calculation struct {
	ID          uint64  `gorm:"column:id;primaryKey;autoIncrement"`
	Dose        float64 `gorm:"column:dose;not null"`
	Fractions   int     `gorm:"column:fractions;not null"`
	AlphaBeta   float64 `gorm:"column:alphaBeta;not null"`
	BED         float64 `gorm:"column:bed;not null"`
	EQD2        float64 `gorm:"column:eqd2;not null"`
	TissueLabel string  `gorm:"column:tissue_label;type:text;not null;default:''"`
	Date        string  `gorm:"column:date;type:text;not null;index"`
}

func (Calculation) TableName() string {
	return "calculations"
}
