package model

// AlphaBetaReference keeps the stored citation list as a JSON text blob;
// the domain codec tolerates malformed blobs on read.
type AlphaBetaReference struct {
	ID             uint64  `gorm:"column:id;primaryKey;autoIncrement"`
	Tissue         string  `gorm:"column:tissue;type:text;not null"`
	AlphaBeta      float64 `gorm:"column:alphaBeta;not null"`
	Description    string  `gorm:"column:description;type:text;not null;default:''"`
	ReferencesJSON string  `gorm:"column:references_json;type:text;not null;default:'[]'"`
}

func (AlphaBetaReference) TableName() string {
	return "alpha_beta_references"
}
