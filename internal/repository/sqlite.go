package repository

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/teamops/teamledger/internal/models"
)

// Repository provides data access methods
type Repository struct {
	db *sql.DB
}

// New creates a new Repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign key constraints
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, err
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite works best with single connection
	db.SetMaxIdleConns(1)

	repo := &Repository{db: db}

	// Run migrations
	if err := repo.migrate(); err != nil {
		return nil, err
	}

	return repo, nil
}

// NewWithDB creates a Repository around an existing connection. The caller
// is responsible for migrations.
func NewWithDB(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// DB returns the underlying database connection (for transactions)
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// migrate runs database migrations
func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS organizations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS categories (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			organization_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (organization_id) REFERENCES organizations(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS athletes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			email TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS athlete_categories (
			athlete_id INTEGER NOT NULL,
			category_id INTEGER NOT NULL,
			FOREIGN KEY (athlete_id) REFERENCES athletes(id) ON DELETE CASCADE,
			FOREIGN KEY (category_id) REFERENCES categories(id) ON DELETE CASCADE,
			UNIQUE(athlete_id, category_id)
		)`,
		`CREATE TABLE IF NOT EXISTS managers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			access_code TEXT UNIQUE NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS manager_categories (
			manager_id INTEGER NOT NULL,
			category_id INTEGER NOT NULL,
			FOREIGN KEY (manager_id) REFERENCES managers(id) ON DELETE CASCADE,
			FOREIGN KEY (category_id) REFERENCES categories(id) ON DELETE CASCADE,
			UNIQUE(manager_id, category_id)
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			organization_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			location TEXT,
			description TEXT,
			event_date DATETIME NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (organization_id) REFERENCES organizations(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS event_categories (
			event_id INTEGER NOT NULL,
			category_id INTEGER NOT NULL,
			FOREIGN KEY (event_id) REFERENCES events(id) ON DELETE CASCADE,
			FOREIGN KEY (category_id) REFERENCES categories(id) ON DELETE CASCADE,
			UNIQUE(event_id, category_id)
		)`,
		`CREATE TABLE IF NOT EXISTS payment_definitions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			event_id INTEGER UNIQUE,
			name TEXT NOT NULL,
			due_date DATETIME,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (event_id) REFERENCES events(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS payment_items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			definition_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			unit_value_cents INTEGER NOT NULL,
			quantity_enabled BOOLEAN DEFAULT 0,
			required BOOLEAN DEFAULT 0,
			is_fixed BOOLEAN DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (definition_id) REFERENCES payment_definitions(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS attendances (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			event_id INTEGER NOT NULL,
			athlete_id INTEGER NOT NULL,
			confirmed BOOLEAN DEFAULT 0,
			confirmed_at DATETIME,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (event_id) REFERENCES events(id),
			FOREIGN KEY (athlete_id) REFERENCES athletes(id),
			UNIQUE(event_id, athlete_id)
		)`,
		`CREATE TABLE IF NOT EXISTS ledger_entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			attendance_id INTEGER NOT NULL,
			payment_item_id INTEGER NOT NULL,
			confirmed_quantity INTEGER NOT NULL DEFAULT 0,
			paid_quantity INTEGER NOT NULL DEFAULT 0,
			paid BOOLEAN DEFAULT 0,
			paid_at DATETIME,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (attendance_id) REFERENCES attendances(id) ON DELETE CASCADE,
			FOREIGN KEY (payment_item_id) REFERENCES payment_items(id),
			UNIQUE(attendance_id, payment_item_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_attendances_event ON attendances(event_id)`,
		`CREATE INDEX IF NOT EXISTS idx_attendances_athlete ON attendances(athlete_id)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_entries_attendance ON ledger_entries(attendance_id)`,
		`CREATE INDEX IF NOT EXISTS idx_event_categories_category ON event_categories(category_id)`,
		`CREATE INDEX IF NOT EXISTS idx_athlete_categories_category ON athlete_categories(category_id)`,
		`CREATE INDEX IF NOT EXISTS idx_managers_access_code ON managers(access_code)`,
	}

	for _, m := range migrations {
		if _, err := r.db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

// ===== Organizations and categories =====

// CreateOrganization creates a new organization
func (r *Repository) CreateOrganization(ctx context.Context, name string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO organizations (name) VALUES (?)`, name)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// CreateCategory creates a new category within an organization
func (r *Repository) CreateCategory(ctx context.Context, organizationID int64, name string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (organization_id, name) VALUES (?, ?)`, organizationID, name)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListCategories returns all categories of an organization ordered by name
func (r *Repository) ListCategories(ctx context.Context, organizationID int64) ([]models.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, organization_id, name FROM categories
		WHERE organization_id = ?
		ORDER BY name, id
	`, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.OrganizationID, &c.Name); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// ===== Athletes =====

// CreateAthlete creates a new athlete
func (r *Repository) CreateAthlete(ctx context.Context, name, email string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO athletes (name, email) VALUES (?, ?)`, name, email)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// AssignAthleteCategory links an athlete to a category, ignoring duplicates
func (r *Repository) AssignAthleteCategory(ctx context.Context, athleteID, categoryID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO athlete_categories (athlete_id, category_id) VALUES (?, ?)`,
		athleteID, categoryID)
	return err
}

// GetAthlete returns an athlete by id with its category ids
func (r *Repository) GetAthlete(ctx context.Context, id int64) (*models.Athlete, error) {
	var a models.Athlete
	var email sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email FROM athletes WHERE id = ?`, id).Scan(&a.ID, &a.Name, &email)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	a.Email = email.String

	rows, err := r.db.QueryContext(ctx,
		`SELECT category_id FROM athlete_categories WHERE athlete_id = ? ORDER BY category_id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var catID int64
		if err := rows.Scan(&catID); err != nil {
			return nil, err
		}
		a.CategoryIDs = append(a.CategoryIDs, catID)
	}
	return &a, rows.Err()
}

// ListEligibleAthletes returns athletes sharing at least one category with the
// event, ordered by name. CategoryIDs on each athlete holds the shared
// categories only.
func (r *Repository) ListEligibleAthletes(ctx context.Context, eventID int64) ([]models.Athlete, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT a.id, a.name, a.email, ac.category_id
		FROM athletes a
		JOIN athlete_categories ac ON ac.athlete_id = a.id
		JOIN event_categories ec ON ec.category_id = ac.category_id
		WHERE ec.event_id = ?
		ORDER BY a.name, a.id, ac.category_id
	`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var athletes []models.Athlete
	index := make(map[int64]int)
	for rows.Next() {
		var (
			id    int64
			name  string
			email sql.NullString
			catID int64
		)
		if err := rows.Scan(&id, &name, &email, &catID); err != nil {
			return nil, err
		}
		if i, ok := index[id]; ok {
			athletes[i].CategoryIDs = append(athletes[i].CategoryIDs, catID)
			continue
		}
		index[id] = len(athletes)
		athletes = append(athletes, models.Athlete{
			ID:          id,
			Name:        name,
			Email:       email.String,
			CategoryIDs: []int64{catID},
		})
	}
	return athletes, rows.Err()
}

// ===== Managers =====

// CreateManager creates a new manager with a login access code
func (r *Repository) CreateManager(ctx context.Context, name, accessCode string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO managers (name, access_code) VALUES (?, ?)`, name, accessCode)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// AssignManagerCategory links a manager to a category, ignoring duplicates
func (r *Repository) AssignManagerCategory(ctx context.Context, managerID, categoryID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO manager_categories (manager_id, category_id) VALUES (?, ?)`,
		managerID, categoryID)
	return err
}

// GetManagerByAccessCode returns the manager owning an access code
func (r *Repository) GetManagerByAccessCode(ctx context.Context, accessCode string) (*models.Manager, error) {
	var m models.Manager
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, access_code FROM managers WHERE access_code = ?`, accessCode).
		Scan(&m.ID, &m.Name, &m.AccessCode)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListManagerCategoryIDs returns the category ids a manager is authorized for
func (r *Repository) ListManagerCategoryIDs(ctx context.Context, managerID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category_id FROM manager_categories WHERE manager_id = ? ORDER BY category_id`, managerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ===== Events and payment definitions =====

// CreateEvent creates an event with its category associations
func (r *Repository) CreateEvent(ctx context.Context, organizationID int64, name, location, description string, date time.Time, categoryIDs []int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO events (organization_id, name, location, description, event_date)
		VALUES (?, ?, ?, ?, ?)
	`, organizationID, name, location, description, date)
	if err != nil {
		return 0, err
	}
	eventID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	for _, catID := range categoryIDs {
		if _, err := r.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO event_categories (event_id, category_id) VALUES (?, ?)`,
			eventID, catID); err != nil {
			return 0, err
		}
	}
	return eventID, nil
}

// GetEvent returns an event by id with its category ids
func (r *Repository) GetEvent(ctx context.Context, id int64) (*models.Event, error) {
	var (
		e           models.Event
		location    sql.NullString
		description sql.NullString
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, organization_id, name, location, description, event_date
		FROM events WHERE id = ?
	`, id).Scan(&e.ID, &e.OrganizationID, &e.Name, &location, &description, &e.Date)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	e.Location = location.String
	e.Description = description.String

	rows, err := r.db.QueryContext(ctx,
		`SELECT category_id FROM event_categories WHERE event_id = ? ORDER BY category_id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var catID int64
		if err := rows.Scan(&catID); err != nil {
			return nil, err
		}
		e.CategoryIDs = append(e.CategoryIDs, catID)
	}
	return &e, rows.Err()
}

// ListEventsForCategories returns events sharing at least one of the given
// categories, ordered by date then id. A nil slice returns all events.
func (r *Repository) ListEventsForCategories(ctx context.Context, categoryIDs []int64) ([]models.Event, error) {
	query := `
		SELECT DISTINCT e.id, e.organization_id, e.name, e.location, e.description, e.event_date
		FROM events e
	`
	var args []interface{}
	if categoryIDs != nil {
		if len(categoryIDs) == 0 {
			return nil, nil
		}
		placeholders := ""
		for i, id := range categoryIDs {
			if i > 0 {
				placeholders += ", "
			}
			placeholders += "?"
			args = append(args, id)
		}
		query += ` JOIN event_categories ec ON ec.event_id = e.id
		WHERE ec.category_id IN (` + placeholders + `)`
	}
	query += ` ORDER BY e.event_date, e.id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var (
			e           models.Event
			location    sql.NullString
			description sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.OrganizationID, &e.Name, &location, &description, &e.Date); err != nil {
			return nil, err
		}
		e.Location = location.String
		e.Description = description.String
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range events {
		catRows, err := r.db.QueryContext(ctx,
			`SELECT category_id FROM event_categories WHERE event_id = ? ORDER BY category_id`, events[i].ID)
		if err != nil {
			return nil, err
		}
		for catRows.Next() {
			var catID int64
			if err := catRows.Scan(&catID); err != nil {
				catRows.Close()
				return nil, err
			}
			events[i].CategoryIDs = append(events[i].CategoryIDs, catID)
		}
		if err := catRows.Err(); err != nil {
			catRows.Close()
			return nil, err
		}
		catRows.Close()
	}
	return events, nil
}

// CreatePaymentDefinition creates a payment definition, optionally attached to an event
func (r *Repository) CreatePaymentDefinition(ctx context.Context, eventID *int64, name string, dueDate time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO payment_definitions (event_id, name, due_date) VALUES (?, ?, ?)`,
		eventID, name, dueDate)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// CreatePaymentItem adds an item to a payment definition
func (r *Repository) CreatePaymentItem(ctx context.Context, definitionID int64, name string, unitValueCents int64, quantityEnabled, required, isFixed bool) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO payment_items (definition_id, name, unit_value_cents, quantity_enabled, required, is_fixed)
		VALUES (?, ?, ?, ?, ?, ?)
	`, definitionID, name, unitValueCents, quantityEnabled, required, isFixed)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetEventPaymentDefinition returns the event's payment definition with items
// ordered by creation time, or ErrNotFound when the event has none.
func (r *Repository) GetEventPaymentDefinition(ctx context.Context, eventID int64) (*models.PaymentDefinition, error) {
	var (
		d       models.PaymentDefinition
		defEvt  sql.NullInt64
		dueDate sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, event_id, name, due_date FROM payment_definitions WHERE event_id = ?
	`, eventID).Scan(&d.ID, &defEvt, &d.Name, &dueDate)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if defEvt.Valid {
		d.EventID = &defEvt.Int64
	}
	if dueDate.Valid {
		d.DueDate = dueDate.Time
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, definition_id, name, unit_value_cents, quantity_enabled, required, is_fixed
		FROM payment_items
		WHERE definition_id = ?
		ORDER BY created_at, id
	`, d.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item models.PaymentItem
		if err := rows.Scan(&item.ID, &item.DefinitionID, &item.Name, &item.UnitValueCents,
			&item.QuantityEnabled, &item.Required, &item.IsFixed); err != nil {
			return nil, err
		}
		d.Items = append(d.Items, item)
	}
	return &d, rows.Err()
}

// ===== Attendances =====

// GetAttendance returns the attendance for an (event, athlete) pair
func (r *Repository) GetAttendance(ctx context.Context, eventID, athleteID int64) (*models.Attendance, error) {
	var (
		a           models.Attendance
		confirmedAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, event_id, athlete_id, confirmed, confirmed_at
		FROM attendances WHERE event_id = ? AND athlete_id = ?
	`, eventID, athleteID).Scan(&a.ID, &a.EventID, &a.AthleteID, &a.Confirmed, &confirmedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if confirmedAt.Valid {
		a.ConfirmedAt = &confirmedAt.Time
	}
	return &a, nil
}

// ConfirmAttendance creates or updates the attendance for the pair as a
// single conditional write, so concurrent confirmations cannot produce
// duplicate rows or lost updates. Returns the attendance id.
func (r *Repository) ConfirmAttendance(ctx context.Context, eventID, athleteID int64, confirmedAt time.Time) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO attendances (event_id, athlete_id, confirmed, confirmed_at, updated_at)
		VALUES (?, ?, 1, ?, ?)
		ON CONFLICT(event_id, athlete_id) DO UPDATE SET
			confirmed = 1,
			confirmed_at = excluded.confirmed_at,
			updated_at = excluded.updated_at
		RETURNING id
	`, eventID, athleteID, confirmedAt, confirmedAt).Scan(&id)
	return id, err
}

// EnsureAttendance creates the attendance as confirmed if absent and leaves
// an existing row untouched. Returns the attendance id.
func (r *Repository) EnsureAttendance(ctx context.Context, eventID, athleteID int64, confirmedAt time.Time) (int64, error) {
	var id int64
	// The self-assigning DO UPDATE makes RETURNING yield the existing row
	// without modifying it.
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO attendances (event_id, athlete_id, confirmed, confirmed_at, updated_at)
		VALUES (?, ?, 1, ?, ?)
		ON CONFLICT(event_id, athlete_id) DO UPDATE SET
			confirmed = attendances.confirmed
		RETURNING id
	`, eventID, athleteID, confirmedAt, confirmedAt).Scan(&id)
	return id, err
}

// CancelAttendance clears the confirmation flag and timestamp. A missing
// attendance is a no-op.
func (r *Repository) CancelAttendance(ctx context.Context, eventID, athleteID int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE attendances SET confirmed = 0, confirmed_at = NULL, updated_at = ?
		WHERE event_id = ? AND athlete_id = ?
	`, time.Now(), eventID, athleteID)
	return err
}

// ListEventAttendances returns all attendances for an event
func (r *Repository) ListEventAttendances(ctx context.Context, eventID int64) ([]models.Attendance, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, event_id, athlete_id, confirmed, confirmed_at
		FROM attendances WHERE event_id = ?
		ORDER BY athlete_id
	`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attendances []models.Attendance
	for rows.Next() {
		var (
			a           models.Attendance
			confirmedAt sql.NullTime
		)
		if err := rows.Scan(&a.ID, &a.EventID, &a.AthleteID, &a.Confirmed, &confirmedAt); err != nil {
			return nil, err
		}
		if confirmedAt.Valid {
			a.ConfirmedAt = &confirmedAt.Time
		}
		attendances = append(attendances, a)
	}
	return attendances, rows.Err()
}

// ===== Ledger entries =====

// GetLedgerEntry returns the entry for an (attendance, item) pair
func (r *Repository) GetLedgerEntry(ctx context.Context, attendanceID, paymentItemID int64) (*models.LedgerEntry, error) {
	var (
		e      models.LedgerEntry
		paidAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, attendance_id, payment_item_id, confirmed_quantity, paid_quantity, paid, paid_at
		FROM ledger_entries WHERE attendance_id = ? AND payment_item_id = ?
	`, attendanceID, paymentItemID).Scan(&e.ID, &e.AttendanceID, &e.PaymentItemID,
		&e.ConfirmedQuantity, &e.PaidQuantity, &e.Paid, &paidAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if paidAt.Valid {
		e.PaidAt = &paidAt.Time
	}
	return &e, nil
}

// UpsertConfirmedQuantity sets the entry's confirmed quantity, creating the
// entry unpaid when absent.
func (r *Repository) UpsertConfirmedQuantity(ctx context.Context, attendanceID, paymentItemID int64, quantity int) error {
	now := time.Now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ledger_entries (attendance_id, payment_item_id, confirmed_quantity, paid_quantity, paid, updated_at)
		VALUES (?, ?, ?, 0, 0, ?)
		ON CONFLICT(attendance_id, payment_item_id) DO UPDATE SET
			confirmed_quantity = excluded.confirmed_quantity,
			updated_at = excluded.updated_at
	`, attendanceID, paymentItemID, quantity, now)
	return err
}

// UpsertPaidQuantity marks the entry paid with the given quantity. The
// confirmed quantity is backfilled only when its stored value is zero, so a
// payment never lowers an already-confirmed quantity.
func (r *Repository) UpsertPaidQuantity(ctx context.Context, attendanceID, paymentItemID int64, quantity int, paidAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ledger_entries (attendance_id, payment_item_id, confirmed_quantity, paid_quantity, paid, paid_at, updated_at)
		VALUES (?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT(attendance_id, payment_item_id) DO UPDATE SET
			paid = 1,
			paid_quantity = excluded.paid_quantity,
			paid_at = excluded.paid_at,
			confirmed_quantity = CASE WHEN ledger_entries.confirmed_quantity = 0
				THEN excluded.confirmed_quantity
				ELSE ledger_entries.confirmed_quantity END,
			updated_at = excluded.updated_at
	`, attendanceID, paymentItemID, quantity, quantity, paidAt, paidAt)
	return err
}

// DeleteLedgerEntry removes the entry for an (attendance, item) pair
func (r *Repository) DeleteLedgerEntry(ctx context.Context, attendanceID, paymentItemID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM ledger_entries WHERE attendance_id = ? AND payment_item_id = ?`,
		attendanceID, paymentItemID)
	return err
}

// ListAttendanceEntries returns all ledger entries of an attendance ordered
// by item creation
func (r *Repository) ListAttendanceEntries(ctx context.Context, attendanceID int64) ([]models.LedgerEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT le.id, le.attendance_id, le.payment_item_id, le.confirmed_quantity, le.paid_quantity, le.paid, le.paid_at
		FROM ledger_entries le
		JOIN payment_items pi ON pi.id = le.payment_item_id
		WHERE le.attendance_id = ?
		ORDER BY pi.created_at, pi.id
	`, attendanceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.LedgerEntry
	for rows.Next() {
		var (
			e      models.LedgerEntry
			paidAt sql.NullTime
		)
		if err := rows.Scan(&e.ID, &e.AttendanceID, &e.PaymentItemID,
			&e.ConfirmedQuantity, &e.PaidQuantity, &e.Paid, &paidAt); err != nil {
			return nil, err
		}
		if paidAt.Valid {
			e.PaidAt = &paidAt.Time
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ListEventLedgerRows returns every athlete-facing ledger entry for the event
// joined with its item. Fixed items never enter athlete ledgers and are
// excluded here as well, so historical data cannot leak them into summaries.
func (r *Repository) ListEventLedgerRows(ctx context.Context, eventID int64) ([]LedgerRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT a.athlete_id, le.payment_item_id, pi.name, pi.unit_value_cents,
		       le.confirmed_quantity, le.paid_quantity, le.paid
		FROM ledger_entries le
		JOIN attendances a ON a.id = le.attendance_id
		JOIN payment_items pi ON pi.id = le.payment_item_id
		WHERE a.event_id = ? AND pi.is_fixed = 0
		ORDER BY pi.created_at, pi.id, a.athlete_id
	`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []LedgerRow
	for rows.Next() {
		var row LedgerRow
		if err := rows.Scan(&row.AthleteID, &row.PaymentItemID, &row.ItemName,
			&row.UnitValueCents, &row.ConfirmedQuantity, &row.PaidQuantity, &row.Paid); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
