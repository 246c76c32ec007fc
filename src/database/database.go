package database

import (
	"database/sql"
	stdlog "log"

	"github.com/username/catcost/backend/src/logger"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

func InitDB(databasePath string) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		stdlog.Fatalf("failed to open database at %s: %v", databasePath, err)
	}

	DB = db

	if logger.L != nil {
		logger.L.Info("Ensuring database schema", "databasePath", databasePath)
	} else {
		stdlog.Println("Ensuring database schema for:", databasePath)
	}

	createTableStatement := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS translators (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT,
		active BOOLEAN DEFAULT TRUE
	);

	CREATE TABLE IF NOT EXISTS clients (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT,
		active BOOLEAN DEFAULT TRUE
	);

	CREATE TABLE IF NOT EXISTS language_pairs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source_language TEXT NOT NULL,
		target_language TEXT NOT NULL,
		UNIQUE(source_language, target_language)
	);

	CREATE TABLE IF NOT EXISTS rates (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		translator_id INTEGER NOT NULL,
		client_id INTEGER NOT NULL DEFAULT 0,
		language_pair_id INTEGER NOT NULL,
		category TEXT NOT NULL,
		rate_per_word TEXT NOT NULL,
		minimum_fee TEXT NOT NULL DEFAULT '0',
		minimum_fee_enabled BOOLEAN DEFAULT FALSE,
		currency TEXT NOT NULL DEFAULT 'EUR',
		FOREIGN KEY(translator_id) REFERENCES translators(id),
		FOREIGN KEY(client_id) REFERENCES clients(id),
		FOREIGN KEY(language_pair_id) REFERENCES language_pairs(id),
		UNIQUE(translator_id, client_id, language_pair_id, category)
	);

	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		translator_id INTEGER NOT NULL,
		client_id INTEGER,
		mt_percentage INTEGER NOT NULL DEFAULT 70,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(translator_id) REFERENCES translators(id),
		FOREIGN KEY(client_id) REFERENCES clients(id)
	);

	CREATE TABLE IF NOT EXISTS project_files (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		filename TEXT NOT NULL,
		format TEXT NOT NULL,
		parsed_data TEXT NOT NULL,
		uploaded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(project_id) REFERENCES projects(id)
	);

	CREATE TABLE IF NOT EXISTS quotes (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		breakdown TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(project_id) REFERENCES projects(id)
	);
	`

	_, err = DB.Exec(createTableStatement)
	if err != nil {
		if logger.L != nil {
			logger.L.Error("failed to create tables", "error", err)
		}
		stdlog.Fatalf("failed to create tables: %v", err)
	}
}
