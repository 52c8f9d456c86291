package sqlite

// Money and dates are TEXT: decimals keep their exact digits and YYYY-MM-DD sorts
// chronologically. AUTOINCREMENT keeps ids of deleted rows from being reused, since
// ledger provenance tags refer to them.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS butchers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		phone TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		experience INTEGER CHECK (experience >= 0),
		notes TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS animals (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		type TEXT NOT NULL,
		breed TEXT NOT NULL DEFAULT '',
		gender TEXT NOT NULL DEFAULT '',
		birth_date TEXT,
		weight TEXT,
		purchase_price TEXT NOT NULL,
		purchase_date TEXT NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('active', 'sold', 'deceased')),
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS animals_user_idx ON animals (user_id)`,
	`CREATE TABLE IF NOT EXISTS feed (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		quantity TEXT NOT NULL,
		unit_price TEXT NOT NULL,
		total_cost TEXT NOT NULL,
		supplier TEXT NOT NULL DEFAULT '',
		feed_date TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS feed_user_idx ON feed (user_id)`,
	`CREATE TABLE IF NOT EXISTS vaccinations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		animal_id INTEGER NOT NULL,
		vaccine_name TEXT NOT NULL,
		vaccination_date TEXT NOT NULL,
		next_date TEXT,
		veterinarian TEXT NOT NULL DEFAULT '',
		cost TEXT,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS vaccinations_user_idx ON vaccinations (user_id)`,
	`CREATE TABLE IF NOT EXISTS sales (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		animal_id INTEGER NOT NULL UNIQUE REFERENCES animals (id),
		butcher_id INTEGER REFERENCES butchers (id) ON DELETE SET NULL,
		sale_date TEXT NOT NULL,
		sale_price TEXT NOT NULL,
		profit TEXT NOT NULL,
		buyer_name TEXT NOT NULL DEFAULT '',
		buyer_phone TEXT NOT NULL DEFAULT '',
		payment_type TEXT NOT NULL DEFAULT 'cash',
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS sales_user_idx ON sales (user_id)`,
	`CREATE TABLE IF NOT EXISTS finance_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		kind TEXT NOT NULL CHECK (kind IN ('income', 'expense')),
		amount TEXT NOT NULL,
		category TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		record_date TEXT NOT NULL,
		source_kind TEXT,
		source_id INTEGER,
		created_at TEXT NOT NULL,
		CHECK ((source_kind IS NULL) = (source_id IS NULL))
	)`,
	`CREATE INDEX IF NOT EXISTS finance_user_date_idx ON finance_records (user_id, record_date DESC, id DESC)`,
	`CREATE INDEX IF NOT EXISTS finance_source_idx ON finance_records (user_id, source_kind, source_id)`,
}
