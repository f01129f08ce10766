package database

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/shelfmark/shelfmark/internal/entities"
)

// HashFunc hashes a plaintext password for seeded accounts. Injected so
// this package does not depend on the auth package's bcrypt settings.
type HashFunc func(password string) (string, error)

var seedGenres = []string{
	"Fiction", "Non-Fiction", "Science Fiction", "Fantasy",
	"Mystery", "Romance", "Biography", "History",
}

var seedAuthors = []entities.Author{
	{Name: "J.K. Rowling", Bio: "British author, best known for the Harry Potter series"},
	{Name: "George Orwell", Bio: "English novelist and essayist"},
	{Name: "Jane Austen", Bio: "English novelist"},
	{Name: "Mark Twain", Bio: "American writer and humorist"},
	{Name: "Agatha Christie", Bio: "British mystery writer"},
}

type seedBook struct {
	title, author, genre, language, isbn, description string
	year, copies                                      int
}

var seedBooks = []seedBook{
	{"Harry Potter and the Philosopher's Stone", "J.K. Rowling", "Fantasy", "English", "978-0747532699", "The first book in the Harry Potter series", 1997, 3},
	{"1984", "George Orwell", "Fiction", "English", "978-0452284234", "A dystopian novel about totalitarianism", 1949, 2},
	{"Pride and Prejudice", "Jane Austen", "Romance", "English", "978-0141439518", "A romantic novel of manners", 1813, 2},
	{"The Adventures of Tom Sawyer", "Mark Twain", "Fiction", "English", "978-0486400778", "A novel about a young boy growing up along the Mississippi River", 1876, 1},
	{"Murder on the Orient Express", "Agatha Christie", "Mystery", "English", "978-0062693662", "A Hercule Poirot mystery novel", 1934, 2},
}

// Seed populates genres, authors, sample books and the default accounts.
// Every step is idempotent so running init-db twice is harmless.
func (d *Database) Seed(hash HashFunc) error {
	for _, name := range seedGenres {
		if err := d.ensureGenre(name); err != nil {
			return fmt.Errorf("failed to seed genre %s: %w", name, err)
		}
	}

	for _, author := range seedAuthors {
		if err := d.ensureAuthor(author); err != nil {
			return fmt.Errorf("failed to seed author %s: %w", author.Name, err)
		}
	}

	for _, b := range seedBooks {
		if err := d.ensureBook(b); err != nil {
			return fmt.Errorf("failed to seed book %q: %w", b.title, err)
		}
	}

	if err := d.ensureUser("Admin User", "admin@library.com", "admin123", entities.UserRoleAdmin, hash); err != nil {
		return err
	}
	if err := d.ensureUser("John Doe", "john@example.com", "student123", entities.UserRoleStudent, hash); err != nil {
		return err
	}

	return nil
}

func (d *Database) ensureGenre(name string) error {
	var existing entities.Genre
	err := d.DB.Where("name = ?", name).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return d.DB.Create(&entities.Genre{Name: name}).Error
	}
	return err
}

func (d *Database) ensureAuthor(author entities.Author) error {
	var existing entities.Author
	err := d.DB.Where("name = ?", author.Name).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return d.DB.Create(&author).Error
	}
	return err
}

func (d *Database) ensureBook(b seedBook) error {
	var existing entities.Book
	err := d.DB.Where("title = ?", b.title).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	var author entities.Author
	if err := d.DB.Where("name = ?", b.author).First(&author).Error; err != nil {
		return err
	}
	var genre entities.Genre
	if err := d.DB.Where("name = ?", b.genre).First(&genre).Error; err != nil {
		return err
	}

	book := entities.Book{
		Title:           b.title,
		AuthorID:        author.ID,
		GenreID:         genre.ID,
		Language:        b.language,
		Year:            b.year,
		ISBN:            b.isbn,
		Description:     b.description,
		TotalCopies:     b.copies,
		AvailableCopies: b.copies,
	}
	return d.DB.Create(&book).Error
}

func (d *Database) ensureUser(name, email, password string, role entities.UserRole, hash HashFunc) error {
	var existing entities.User
	err := d.DB.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	passwordHash, err := hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash password for %s: %w", email, err)
	}

	user := entities.User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
	}
	if err := d.DB.Create(&user).Error; err != nil {
		return err
	}
	log.Printf("Seeded %s account: %s", role, email)
	return nil
}
