package menu

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/adampresley/adamgokit/slices"
	"github.com/adampresley/mediacatalog/pkg/models"
	"github.com/adampresley/mediacatalog/pkg/services"
)

const (
	optionFindPhoto   = "1"
	optionUpdatePhoto = "2"
	optionAlbumList   = "3"
	optionAddTag      = "4"
	optionExit        = "5"

	longDateLayout       = "January 2, 2006"
	notFoundOrDenied     = "Photo not found or access denied"
	sessionExpiredNotice = "Your session has expired. Please log in again."
)

type MenuConfig struct {
	CatalogService services.CatalogServicer
	In             io.Reader
	Out            io.Writer
	SessionService services.SessionServicer
	UserService    services.UserServicer
}

/*
Menu is the interactive console front end. It logs a user in, then loops
over a numbered menu until the user exits, input runs out, or the session
expires.
*/
type Menu struct {
	catalogService services.CatalogServicer
	in             *bufio.Scanner
	out            io.Writer
	sessionService services.SessionServicer
	userService    services.UserServicer

	sessionKey string
}

func NewMenu(config MenuConfig) *Menu {
	return &Menu{
		catalogService: config.CatalogService,
		in:             bufio.NewScanner(config.In),
		out:            config.Out,
		sessionService: config.SessionService,
		userService:    config.UserService,
	}
}

func (m *Menu) Run(ctx context.Context) error {
	var (
		err    error
		choice string
		ok     bool
	)

	if err = m.login(ctx); err != nil {
		if errors.Is(err, models.ErrInvalidCredentials) || errors.Is(err, io.EOF) {
			m.println("Login failed. Exiting...")
			return nil
		}

		return err
	}

	defer func() {
		_ = m.sessionService.End(ctx, m.sessionKey)
	}()

	m.println("=== Digital Media Catalog ===")

	for {
		m.println("\nOptions:")
		m.println("1. Find Photo")
		m.println("2. Update Photo Details")
		m.println("3. Album Photo List")
		m.println("4. Add Tag to Photo")
		m.println("5. Exit")

		if choice, ok = m.prompt("Your selection> "); !ok {
			return nil
		}

		if choice == optionExit {
			m.println("Goodbye!")
			return nil
		}

		if !slices.IsInSlice(choice, []string{optionFindPhoto, optionUpdatePhoto, optionAlbumList, optionAddTag}) {
			m.println("Invalid option. Please choose between 1-5.")
			continue
		}

		userID, valid := m.currentUser(ctx)

		if !valid {
			m.println(sessionExpiredNotice)
			return nil
		}

		switch choice {
		case optionFindPhoto:
			err = m.findPhoto(ctx, userID)
		case optionUpdatePhoto:
			err = m.updatePhoto(ctx, userID)
		case optionAlbumList:
			err = m.albumPhotoList(ctx, userID)
		case optionAddTag:
			err = m.addTag(ctx, userID)
		}

		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			slog.Error("menu action failed", "error", err, "option", choice)
			m.println("Something went wrong. Please try again.")
		}
	}
}

func (m *Menu) login(ctx context.Context) error {
	var (
		err      error
		email    string
		password string
		ok       bool
		user     *models.User
		session  models.Session
	)

	m.println("=== Digital Media Catalog Login ===")

	if email, ok = m.prompt("Email: "); !ok {
		return io.EOF
	}

	if password, ok = m.prompt("Password: "); !ok {
		return io.EOF
	}

	if user, err = m.userService.ValidateCredentials(ctx, email, password); err != nil {
		if errors.Is(err, models.ErrInvalidCredentials) {
			m.println("Invalid username or password")
		}

		return err
	}

	if session, err = m.sessionService.Start(ctx, models.SessionPayload{UserID: user.ID}); err != nil {
		return fmt.Errorf("error starting console session: %w", err)
	}

	m.sessionKey = session.Key
	m.printf("Welcome, %s!\n", user.Name)
	return nil
}

func (m *Menu) currentUser(ctx context.Context) (int, bool) {
	payload, ok := m.sessionService.GetPayload(ctx, m.sessionKey)
	return payload.UserID, ok
}

func (m *Menu) findPhoto(ctx context.Context, userID int) error {
	var (
		err        error
		photo      *models.Photo
		albumNames string
	)

	photoID, err := m.promptPhotoID("Photo ID? ")

	if err != nil {
		return err
	}

	if photo, err = m.catalogService.GetPhoto(ctx, userID, photoID); err != nil {
		return m.reportNotFound(err)
	}

	if albumNames, err = m.catalogService.AlbumNames(ctx, photo.Albums); err != nil {
		return err
	}

	m.printf("Filename: %s\n", photo.Filename)
	m.printf(" Title: %s\n", photo.Title)
	m.printf("  Date: %s\n", photo.Date.Format(longDateLayout))
	m.printf("Albums: %s\n", albumNames)
	m.printf("  Tags: %s\n", strings.Join(photo.Tags, ", "))
	return nil
}

func (m *Menu) updatePhoto(ctx context.Context, userID int) error {
	var (
		err         error
		photo       *models.Photo
		title       string
		description string
		ok          bool
	)

	photoID, err := m.promptPhotoID("Photo ID? ")

	if err != nil {
		return err
	}

	if photo, err = m.catalogService.GetPhoto(ctx, userID, photoID); err != nil {
		return m.reportNotFound(err)
	}

	if photo.OwnerID != userID {
		m.println(notFoundOrDenied)
		return nil
	}

	m.println("Press enter to keep existing value.")

	if title, ok = m.prompt(fmt.Sprintf("Enter value for title [%s]: ", photo.Title)); !ok {
		return io.EOF
	}

	if description, ok = m.prompt(fmt.Sprintf("Enter value for description [%s]: ", photo.Description)); !ok {
		return io.EOF
	}

	if err = m.catalogService.UpdateDetails(ctx, userID, photoID, title, description); err != nil {
		slog.Error("error updating photo from console", "error", err, "photoID", photoID)
		m.println("Failed to update photo")
		return nil
	}

	m.println("Photo updated")
	return nil
}

func (m *Menu) albumPhotoList(ctx context.Context, userID int) error {
	var (
		err    error
		name   string
		ok     bool
		photos []models.Photo
	)

	if name, ok = m.prompt("What is the name of the album? "); !ok {
		return io.EOF
	}

	_, photos, err = m.catalogService.ListAlbumPhotos(ctx, userID, name)

	if err != nil && !errors.Is(err, models.ErrAlbumNotFound) {
		return err
	}

	if len(photos) == 0 {
		m.println("No photos found in this album or album not found")
		return nil
	}

	m.println("filename,resolution,tags")

	for _, photo := range photos {
		m.printf("%s,%s,%s\n", photo.Filename, photo.Resolution, strings.Join(photo.Tags, ":"))
	}

	return nil
}

func (m *Menu) addTag(ctx context.Context, userID int) error {
	var (
		err error
		tag string
		ok  bool
	)

	photoID, err := m.promptPhotoID("What photo ID to tag? ")

	if err != nil {
		return err
	}

	if tag, ok = m.prompt("What tag to add? "); !ok {
		return io.EOF
	}

	if err = m.catalogService.AddTag(ctx, userID, photoID, tag); err != nil {
		if !isExpectedTagError(err) {
			slog.Error("error adding tag from console", "error", err, "photoID", photoID)
		}

		m.println("Photo not found, access denied, or tag already exists")
		return nil
	}

	m.println("Updated!")
	return nil
}

/*
promptPhotoID reads a photo id. Anything that is not a number becomes id 0,
which no photo carries, so it reads as not found.
*/
func (m *Menu) promptPhotoID(prompt string) (int, error) {
	value, ok := m.prompt(prompt)

	if !ok {
		return 0, io.EOF
	}

	id, err := strconv.Atoi(value)

	if err != nil {
		return 0, nil
	}

	return id, nil
}

func (m *Menu) reportNotFound(err error) error {
	if errors.Is(err, models.ErrPhotoNotFound) {
		m.println(notFoundOrDenied)
		return nil
	}

	return err
}

func (m *Menu) prompt(prompt string) (string, bool) {
	_, _ = io.WriteString(m.out, prompt)

	if !m.in.Scan() {
		return "", false
	}

	return strings.TrimSpace(m.in.Text()), true
}

func (m *Menu) println(s string) {
	_, _ = fmt.Fprintln(m.out, s)
}

func (m *Menu) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(m.out, format, args...)
}

func isExpectedTagError(err error) bool {
	return errors.Is(err, models.ErrPhotoNotFound) ||
		errors.Is(err, models.ErrTagExists) ||
		errors.Is(err, models.ErrEmptyTag)
}
