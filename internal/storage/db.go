package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"freshops/internal"
)

// DB is the durable record store. It owns customers, products, committed
// orders and price records; the parsing pipeline only ever reads from it.
type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS customers (
  id INTEGER PRIMARY KEY,
  companyName TEXT NOT NULL,
  branch TEXT NOT NULL DEFAULT '',
  contactPerson TEXT,
  contactNumber TEXT,
  deliveryAddress TEXT,
  lastSeenAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(companyName, branch)
);
CREATE INDEX IF NOT EXISTS idx_customers_companyName ON customers(companyName);

CREATE TABLE IF NOT EXISTS products (
  code TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  baseUom TEXT NOT NULL DEFAULT '',
  allowedUoms TEXT NOT NULL DEFAULT '[]',
  lastSeenAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_products_name ON products(name);

CREATE TABLE IF NOT EXISTS orders (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  customerId INTEGER NOT NULL,
  deliveryDate TEXT,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(customerId) REFERENCES customers(id)
);

CREATE TABLE IF NOT EXISTS order_items (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  orderId INTEGER NOT NULL,
  rawLine TEXT NOT NULL,
  productCode TEXT NOT NULL,
  qty REAL NOT NULL,
  uom TEXT NOT NULL,
  price REAL NOT NULL,
  FOREIGN KEY(orderId) REFERENCES orders(id),
  FOREIGN KEY(productCode) REFERENCES products(code)
);
CREATE INDEX IF NOT EXISTS idx_order_items_orderId ON order_items(orderId);
CREATE INDEX IF NOT EXISTS idx_order_items_productCode ON order_items(productCode);

CREATE TABLE IF NOT EXISTS price_records (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  supplier TEXT NOT NULL,
  productCode TEXT NOT NULL,
  productName TEXT NOT NULL,
  uom TEXT NOT NULL,
  price REAL NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(productCode) REFERENCES products(code)
);
CREATE INDEX IF NOT EXISTS idx_price_records_supplier ON price_records(supplier);

CREATE TABLE IF NOT EXISTS intake (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  provider TEXT NOT NULL,
  messageId TEXT NOT NULL,
  subject TEXT,
  sender TEXT,
  receivedAt TEXT,
  hash TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'fetched',
  rawRef TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(provider, messageId)
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) UpsertCustomers(customers []internal.CustomerRecord) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO customers (id, companyName, branch, contactPerson, contactNumber, deliveryAddress, lastSeenAt)
VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(id) DO UPDATE SET
  companyName=excluded.companyName,
  branch=excluded.branch,
  contactPerson=excluded.contactPerson,
  contactNumber=excluded.contactNumber,
  deliveryAddress=excluded.deliveryAddress,
  lastSeenAt=CURRENT_TIMESTAMP
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range customers {
		if _, err := stmt.Exec(c.ID, c.CompanyName, c.Branch, c.ContactPerson, c.ContactNumber, c.DeliveryAddress); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) ListCustomers() ([]internal.CustomerRecord, error) {
	rows, err := d.conn.Query(`
SELECT id, companyName, branch, contactPerson, contactNumber, deliveryAddress
FROM customers ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.CustomerRecord
	for rows.Next() {
		var c internal.CustomerRecord
		var person, number, address sql.NullString
		if err := rows.Scan(&c.ID, &c.CompanyName, &c.Branch, &person, &number, &address); err != nil {
			return nil, err
		}
		c.ContactPerson = person.String
		c.ContactNumber = number.String
		c.DeliveryAddress = address.String
		out = append(out, c)
	}
	return out, rows.Err()
}

func (d *DB) UpsertProducts(products []internal.ProductRecord) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO products (code, name, baseUom, allowedUoms, lastSeenAt)
VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(code) DO UPDATE SET
  name=excluded.name,
  baseUom=excluded.baseUom,
  allowedUoms=excluded.allowedUoms,
  lastSeenAt=CURRENT_TIMESTAMP
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range products {
		allowedJSON, _ := json.Marshal(p.AllowedUOMs)
		if _, err := stmt.Exec(p.Code, p.Name, p.BaseUOM, string(allowedJSON)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) ListProducts() ([]internal.ProductRecord, error) {
	rows, err := d.conn.Query(`SELECT code, name, baseUom, allowedUoms FROM products ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.ProductRecord
	for rows.Next() {
		var p internal.ProductRecord
		var allowedJSON string
		if err := rows.Scan(&p.Code, &p.Name, &p.BaseUOM, &allowedJSON); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(allowedJSON), &p.AllowedUOMs)
		out = append(out, p)
	}
	return out, rows.Err()
}

// InsertOrder writes one committed order with its rows in a single
// transaction and returns the order id. What was staged is what lands:
// nothing is transformed at this boundary.
func (d *DB) InsertOrder(customerID int64, deliveryDate *string, items []internal.ParsedOrderItem) (int64, error) {
	tx, err := d.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.Exec(`INSERT INTO orders (customerId, deliveryDate) VALUES (?, ?)`, customerID, deliveryDate)
	if err != nil {
		return 0, err
	}
	orderID, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.Prepare(`
INSERT INTO order_items (orderId, rawLine, productCode, qty, uom, price)
VALUES (?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, item := range items {
		if item.ProductCode == "" {
			return 0, fmt.Errorf("refusing to insert unresolved order item: %q", item.RawLine)
		}
		if _, err := stmt.Exec(orderID, item.RawLine, item.ProductCode, item.Quantity, item.UOM, item.Price); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return orderID, nil
}

func (d *DB) GetOrder(orderID int64) (*internal.OrderRow, error) {
	var row internal.OrderRow
	err := d.conn.QueryRow(`
SELECT id, customerId, deliveryDate, createdAt FROM orders WHERE id = ?`, orderID).
		Scan(&row.ID, &row.CustomerID, &row.DeliveryDate, &row.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) GetOrderItems(orderID int64) ([]internal.OrderItemRow, error) {
	rows, err := d.conn.Query(`
SELECT id, orderId, rawLine, productCode, qty, uom, price
FROM order_items WHERE orderId = ? ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.OrderItemRow
	for rows.Next() {
		var row internal.OrderItemRow
		if err := rows.Scan(&row.ID, &row.OrderID, &row.RawLine, &row.ProductCode, &row.Quantity, &row.UOM, &row.Price); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// RecentProductCodes returns the distinct product codes previously ordered by
// customers whose company name contains the fragment. Backs the history
// boost during product resolution.
func (d *DB) RecentProductCodes(nameFragment string) (map[string]struct{}, error) {
	rows, err := d.conn.Query(`
SELECT DISTINCT oi.productCode
FROM order_items oi
JOIN orders o ON o.id = oi.orderId
JOIN customers c ON c.id = o.customerId
WHERE c.companyName LIKE '%' || ? || '%'
`, nameFragment)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]struct{}{}
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		out[code] = struct{}{}
	}
	return out, rows.Err()
}

func (d *DB) InsertPriceRecords(supplier string, items []internal.ParsedPriceItem) (int, error) {
	tx, err := d.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO price_records (supplier, productCode, productName, uom, price)
VALUES (?, ?, ?, ?, ?)
`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, item := range items {
		if _, err := stmt.Exec(supplier, item.ProductCode, item.ProductName, item.UOM, item.Price); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(items), nil
}

func (d *DB) ListPriceRecordsBySupplier(supplier string) ([]internal.PriceRecordRow, error) {
	rows, err := d.conn.Query(`
SELECT id, supplier, productCode, productName, uom, price, createdAt
FROM price_records WHERE supplier = ? ORDER BY id`, supplier)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.PriceRecordRow
	for rows.Next() {
		var row internal.PriceRecordRow
		if err := rows.Scan(&row.ID, &row.Supplier, &row.ProductCode, &row.ProductName, &row.UOM, &row.Price, &row.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) UpsertIntake(provider, messageID, subject, sender, receivedAt, hash, rawRef, status string) (internal.IntakeRow, error) {
	_, err := d.conn.Exec(`
INSERT INTO intake (provider, messageId, subject, sender, receivedAt, hash, status, rawRef)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(provider, messageId) DO UPDATE SET
  subject=excluded.subject,
  sender=excluded.sender,
  receivedAt=excluded.receivedAt,
  hash=excluded.hash,
  rawRef=excluded.rawRef,
  updatedAt=CURRENT_TIMESTAMP
`, provider, messageID, subject, sender, receivedAt, hash, status, rawRef)
	if err != nil {
		return internal.IntakeRow{}, err
	}

	row, err := d.GetIntakeByProviderMessageID(provider, messageID)
	if err != nil {
		return internal.IntakeRow{}, err
	}
	if row == nil {
		return internal.IntakeRow{}, errors.New("failed to upsert intake row")
	}
	return *row, nil
}

func (d *DB) GetIntakeByProviderMessageID(provider, messageID string) (*internal.IntakeRow, error) {
	var row internal.IntakeRow
	err := d.conn.QueryRow(`
SELECT id, provider, messageId, subject, sender, receivedAt, hash, status, rawRef
FROM intake WHERE provider = ? AND messageId = ?
`, provider, messageID).Scan(
		&row.ID, &row.Provider, &row.MessageID, &row.Subject, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) MustIntakeByProviderMessageID(provider, messageID string) (internal.IntakeRow, error) {
	row, err := d.GetIntakeByProviderMessageID(provider, messageID)
	if err != nil {
		return internal.IntakeRow{}, err
	}
	if row == nil {
		return internal.IntakeRow{}, fmt.Errorf("intake row not found: provider=%s messageId=%s", provider, messageID)
	}
	return *row, nil
}

func (d *DB) ListIntakeByStatus(status string, limit int) ([]internal.IntakeRow, error) {
	rows, err := d.conn.Query(`
SELECT id, provider, messageId, subject, sender, receivedAt, hash, status, rawRef
FROM intake WHERE status = ? ORDER BY receivedAt ASC LIMIT ?
`, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.IntakeRow
	for rows.Next() {
		var row internal.IntakeRow
		if err := rows.Scan(&row.ID, &row.Provider, &row.MessageID, &row.Subject, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) UpdateIntakeStatus(intakeID int64, status string) error {
	_, err := d.conn.Exec(`UPDATE intake SET status = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?`, status, intakeID)
	return err
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
