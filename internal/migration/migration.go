package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	auditdomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/audit/domain"
	bookingdomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/booking/domain"
	catalogdomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/catalog/domain"
	discountdomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/discountcode/domain"
	leaddomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/lead/domain"
	paymentlinkdomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/paymentlink/domain"
	quotedomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/quote/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"
)

const migrationsDir = "migrations"

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// RunMigrations applies the embedded postgres schema.
func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Closing the migrator would close the shared *sql.DB.

	return nil
}

// Models lists every persisted type, in dependency order.
func Models() []any {
	return []any{
		&catalogdomain.Category{},
		&catalogdomain.PricingItem{},
		&catalogdomain.DiscountTier{},
		&bookingdomain.Booking{},
		&bookingdomain.CrewMember{},
		&bookingdomain.CrewAssignment{},
		&quotedomain.Quote{},
		&quotedomain.LineItem{},
		&leaddomain.SalesRep{},
		&leaddomain.SalesLead{},
		&leaddomain.Activity{},
		&discountdomain.DiscountCode{},
		&discountdomain.Usage{},
		&paymentlinkdomain.PaymentLink{},
		&auditdomain.AuditLog{},
	}
}

// Apply migrates conn with the embedded SQL on postgres and AutoMigrate elsewhere.
func Apply(conn *gorm.DB) error {
	if conn.Dialector.Name() == "postgres" {
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}
	return conn.AutoMigrate(Models()...)
}
