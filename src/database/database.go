package database

import (
	"database/sql"
	stdlog "log"

	"github.com/username/investfolio/backend/src/logger"
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
		logger.L.Info("Checking database migrations", "databasePath", databasePath)
	} else {
		stdlog.Println("Checking database migrations for:", databasePath)
	}
	migrateSecuritiesTable()

	createTableStatement := `
	CREATE TABLE IF NOT EXISTS securities (
		isin TEXT PRIMARY KEY,
		name TEXT,
		ticker TEXT,
		kind TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS portfolios (
		id TEXT PRIMARY KEY
	);

	CREATE TABLE IF NOT EXISTS transactions (
		portfolio TEXT NOT NULL,
		id TEXT NOT NULL,
		isin TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		count INTEGER NOT NULL,
		PRIMARY KEY (portfolio, id),
		FOREIGN KEY (portfolio) REFERENCES portfolios(id),
		FOREIGN KEY (isin) REFERENCES securities(isin)
	);

	CREATE TABLE IF NOT EXISTS transaction_cash_flows (
		portfolio TEXT NOT NULL,
		transaction_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		value TEXT NOT NULL,
		currency TEXT NOT NULL,
		PRIMARY KEY (portfolio, transaction_id, kind),
		FOREIGN KEY (portfolio, transaction_id) REFERENCES transactions(portfolio, id)
	);

	CREATE TABLE IF NOT EXISTS event_cash_flows (
		portfolio TEXT NOT NULL,
		isin TEXT NOT NULL DEFAULT '',
		kind TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		count INTEGER NOT NULL DEFAULT 0,
		value TEXT NOT NULL,
		currency TEXT NOT NULL,
		UNIQUE (portfolio, isin, kind, timestamp, value)
	);

	CREATE TABLE IF NOT EXISTS exchange_rates (
		currency_pair TEXT NOT NULL,
		date TEXT NOT NULL,
		rate TEXT NOT NULL,
		PRIMARY KEY (currency_pair, date)
	);
	`

	_, err = DB.Exec(createTableStatement)
	if err != nil {
		if logger.L != nil {
			logger.L.Error("failed to create tables", "error", err)
		}
		stdlog.Fatalf("failed to create tables: %v", err)
	}
	if logger.L != nil {
		logger.L.Info("Database tables ensured/created.")
	} else {
		stdlog.Println("Database tables ensured/created.")
	}
}

func migrateSecuritiesTable() {
	var tableName string
	err := DB.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='securities'").Scan(&tableName)
	if err != nil {
		if err == sql.ErrNoRows {
			if logger.L != nil {
				logger.L.Info("'securities' table does not exist, no migration needed as table will be created.")
			} else {
				stdlog.Println("'securities' table does not exist, no migration needed as table will be created.")
			}
			return
		}
		if logger.L != nil {
			logger.L.Error("Error checking for 'securities' table", "error", err)
		} else {
			stdlog.Printf("Error checking for 'securities' table: %v", err)
		}
		return
	}

	rows, err := DB.Query("PRAGMA table_info(securities)")
	if err != nil {
		if logger.L != nil {
			logger.L.Error("Error querying table schema for 'securities'", "error", err)
		} else {
			stdlog.Printf("Error querying table schema for 'securities': %v", err)
		}
		return
	}
	defer rows.Close()

	columnExists := make(map[string]bool)
	for rows.Next() {
		var cid, pk int
		var name, dataType string
		var notnullVal int
		var dfltValue interface{}

		if err := rows.Scan(&cid, &name, &dataType, &notnullVal, &dfltValue, &pk); err != nil {
			if logger.L != nil {
				logger.L.Error("Error scanning column info for 'securities'", "error", err)
			} else {
				stdlog.Printf("Error scanning column info for 'securities': %v", err)
			}
			return
		}
		columnExists[name] = true
	}
	if err = rows.Err(); err != nil {
		if logger.L != nil {
			logger.L.Error("Error iterating over column info for 'securities'", "error", err)
		} else {
			stdlog.Printf("Error iterating over column info for 'securities': %v", err)
		}
		return
	}

	// Early databases stored securities without ticker or kind.
	if _, ok := columnExists["ticker"]; !ok {
		_, err := DB.Exec("ALTER TABLE securities ADD COLUMN ticker TEXT")
		if err != nil {
			logger.L.Error("Error adding 'ticker' column to 'securities' table", "error", err)
		} else {
			logger.L.Info("Added 'ticker' column to 'securities' table")
		}
	}
	if _, ok := columnExists["kind"]; !ok {
		_, err := DB.Exec("ALTER TABLE securities ADD COLUMN kind TEXT NOT NULL DEFAULT ''")
		if err != nil {
			logger.L.Error("Error adding 'kind' column to 'securities' table", "error", err)
		} else {
			logger.L.Info("Added 'kind' column to 'securities' table")
		}
	}
}
