package postgres

var schema = []string{
	`CREATE TABLE IF NOT EXISTS butchers (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		phone TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		experience INTEGER CHECK (experience >= 0),
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS animals (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL,
		type TEXT NOT NULL,
		breed TEXT NOT NULL DEFAULT '',
		gender TEXT NOT NULL DEFAULT '',
		birth_date DATE,
		weight NUMERIC(12,2) CHECK (weight >= 0),
		purchase_price NUMERIC(20,2) NOT NULL CHECK (purchase_price >= 0),
		purchase_date DATE NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('active', 'sold', 'deceased')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS animals_user_idx ON animals (user_id)`,
	`CREATE TABLE IF NOT EXISTS feed (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL,
		name TEXT NOT NULL,
		quantity NUMERIC(20,3) NOT NULL CHECK (quantity >= 0),
		unit_price NUMERIC(20,2) NOT NULL CHECK (unit_price >= 0),
		total_cost NUMERIC(20,2) NOT NULL CHECK (total_cost >= 0),
		supplier TEXT NOT NULL DEFAULT '',
		feed_date DATE NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS feed_user_idx ON feed (user_id)`,
	`CREATE TABLE IF NOT EXISTS vaccinations (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL,
		animal_id BIGINT NOT NULL,
		vaccine_name TEXT NOT NULL,
		vaccination_date DATE NOT NULL,
		next_date DATE,
		veterinarian TEXT NOT NULL DEFAULT '',
		cost NUMERIC(20,2) CHECK (cost >= 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS vaccinations_user_idx ON vaccinations (user_id)`,
	`CREATE TABLE IF NOT EXISTS sales (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL,
		animal_id BIGINT NOT NULL UNIQUE REFERENCES animals (id),
		butcher_id BIGINT REFERENCES butchers (id) ON DELETE SET NULL,
		sale_date DATE NOT NULL,
		sale_price NUMERIC(20,2) NOT NULL CHECK (sale_price >= 0),
		profit NUMERIC(20,2) NOT NULL,
		buyer_name TEXT NOT NULL DEFAULT '',
		buyer_phone TEXT NOT NULL DEFAULT '',
		payment_type TEXT NOT NULL DEFAULT 'cash',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS sales_user_idx ON sales (user_id)`,
	`CREATE TABLE IF NOT EXISTS finance_records (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL,
		kind TEXT NOT NULL CHECK (kind IN ('income', 'expense')),
		amount NUMERIC(20,2) NOT NULL CHECK (amount >= 0),
		category TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		record_date DATE NOT NULL,
		source_kind TEXT,
		source_id BIGINT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CHECK ((source_kind IS NULL) = (source_id IS NULL))
	)`,
	`CREATE INDEX IF NOT EXISTS finance_user_date_idx ON finance_records (user_id, record_date DESC, id DESC)`,
	`CREATE INDEX IF NOT EXISTS finance_source_idx ON finance_records (user_id, source_kind, source_id)`,
}
