package database

type Config struct {
	FileName string `envconfig:"SMOTE_DB_FILE" default:"smote.db"`
}
