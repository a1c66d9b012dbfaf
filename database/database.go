// File: /database/database.go
package database

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"vanlife-api/config"
	"vanlife-api/models"
	"vanlife-api/services"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Dialector picks the gorm driver for DATABASE_DRIVER.
func Dialector(driver, databaseURL string) (gorm.Dialector, error) {
	switch driver {
	case DriverMySQL, "":
		return mysql.Open(databaseURL), nil
	case DriverPostgres, "postgresql":
		return postgres.Open(databaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func Initialize(driver, databaseURL string, level logger.LogLevel) (*gorm.DB, error) {
	dialector, err := Dialector(driver, databaseURL)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
		// reviews and transactions outlive the van they point at
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// LogLevel maps the environment to gorm's log level.
func LogLevel(production bool) logger.LogLevel {
	if production {
		return logger.Warn
	}
	return logger.Info
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Van{},
		&models.Transaction{},
		&models.Review{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// SeedPassword is the password of the seeded demo host.
const SeedPassword = "vanlife-demo"

// SeedData fills an empty database with a demo host, six vans and a few
// bookings and reviews. It does nothing when any user exists.
func SeedData(db *gorm.DB, hasher services.PasswordHasher, cfg *config.Config, today models.Date, log logrus.FieldLogger) error {
	var userCount int64
	if err := db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if userCount > 0 {
		log.Info("database already has data, skipping seed")
		return nil
	}

	digest, err := hasher.Hash(SeedPassword)
	if err != nil {
		return err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		users := []models.User{
			{UUID: uuid.NewString(), Name: "Alexander", Surname: "Bolverstein", Email: "a@b.c", Password: digest, Avatar: cfg.DefaultUserImage},
			{UUID: uuid.NewString(), Name: "Snake", Surname: "Test", Email: "snaketests.app@gmail.com", Password: digest, Avatar: cfg.DefaultUserImage},
		}
		if err := tx.Create(&users).Error; err != nil {
			return fmt.Errorf("seed users: %w", err)
		}

		host := users[0]
		vans := demoVans(host.ID, cfg.DefaultVanImage)
		if err := tx.Create(&vans).Error; err != nil {
			return fmt.Errorf("seed vans: %w", err)
		}

		transactions := []models.Transaction{
			demoTransaction("Manual", "Samuel", "samual@example.com", vans[0], today, 3),
			demoTransaction("Linda", "Shine", "lishe@example.com", vans[1], today, 2),
		}
		if err := tx.Create(&transactions).Error; err != nil {
			return fmt.Errorf("seed transactions: %w", err)
		}

		reviews := []models.Review{
			demoReview("Manual Samuel", "The van is fantastic", 5, vans[0], today),
			demoReview("Linda Shine", "The van isn't in its best conditions, but it definitely is worth its price.", 4, vans[3], today),
		}
		if err := tx.Create(&reviews).Error; err != nil {
			return fmt.Errorf("seed reviews: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.WithField("host", "a@b.c").Info("database seeded with demo data")
	return nil
}

func demoVans(hostID uint, image string) []models.Van {
	van := func(name string, typ models.VanType, price int, description string) models.Van {
		return models.Van{
			UUID:        uuid.NewString(),
			Name:        name,
			Type:        typ,
			Description: description,
			PricePerDay: price,
			Image:       image,
			HostID:      hostID,
		}
	}
	return []models.Van{
		van("Modest Explorer", models.VanTypeSimple, 60, "The Modest Explorer is a van designed to get you out of the house and into nature. This beauty is equipped with solar panels, a composting toilet, a water tank and kitchenette. The idea is that you can pack up your home and escape for a weekend or even longer!"),
		van("Beach Bum", models.VanTypeRugged, 80, "Beach Bum is a van inspired by surfers and travelers. It was created to be a portable home away from home, but with some cool features in it you won't find in an ordinary camper."),
		van("Reliable Red", models.VanTypeLuxury, 100, "Reliable Red is a van that was made for travelling. The inside is comfortable and cozy, with plenty of space to stretch out in. There's a small kitchen, so you can cook if you need to. You'll feel like home as soon as you step out of it."),
		van("Dreamfinder", models.VanTypeSimple, 65, "Dreamfinder is the perfect van to travel in and experience. With a ceiling height of 2.1m, you can stand up in this van and there is great head room. The floor is a beautiful glass-reinforced plastic (GRP) which is easy to clean and very hard wearing. A large rear window and large side windows make it really light inside and keep it well ventilated."),
		van("The Cruiser", models.VanTypeLuxury, 120, "The Cruiser is a van for those who love to travel in comfort and luxury. With its many windows, spacious interior and ample storage space, the Cruiser offers a beautiful view wherever you go."),
		van("Green Wonder", models.VanTypeRugged, 70, "With this van, you can take your travel life to the next level. The Green Wonder is a sustainable vehicle that's perfect for people who are looking for a stylish, eco-friendly mode of transport that can go anywhere."),
	}
}

func demoTransaction(name, surname, email string, van models.Van, today models.Date, days int) models.Transaction {
	return models.Transaction{
		UUID:             uuid.NewString(),
		LesseeName:       name,
		LesseeSurname:    surname,
		LesseeEmail:      email,
		Price:            van.PricePerDay * days,
		TransactionDate:  today,
		RentCommencement: today,
		RentExpiration:   today.AddDays(days),
		LessorID:         van.HostID,
		VanID:            van.ID,
		VanUUID:          van.UUID,
	}
}

func demoReview(author, text string, rate int, van models.Van, today models.Date) models.Review {
	return models.Review{
		UUID:            uuid.NewString(),
		Author:          author,
		Text:            text,
		Rate:            rate,
		PublicationDate: today,
		OwnerID:         van.HostID,
		VanID:           van.ID,
		VanUUID:         van.UUID,
		VanName:         van.Name,
	}
}
