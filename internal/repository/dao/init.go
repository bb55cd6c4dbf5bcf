package dao

import "gorm.io/gorm"

func InitTables(db *gorm.DB) error {
	return db.AutoMigrate(
		&Admin{},
		&Unit{},
		&Member{},
		&Criterion{},
		&RankTier{},
		&ScoreReport{},
		&ScoreEntry{},
	)
}
