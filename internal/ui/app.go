package ui

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/log"

	"github.com/thesavant42/adminboard/internal/api"
	"github.com/thesavant42/adminboard/internal/collections"
	"github.com/thesavant42/adminboard/internal/config"
	"github.com/thesavant42/adminboard/internal/listquery"
	"github.com/thesavant42/adminboard/internal/models"
	"github.com/thesavant42/adminboard/internal/session"
)

// errQuit unwinds the app loop after ctrl+c in any view.
var errQuit = errors.New("quit")

// PeopleCollection renders users.
func PeopleCollection() Collection[models.User] {
	return Collection[models.User]{
		Title:   "People",
		Noun:    "users",
		Columns: PeopleColumns(),
		Row: func(u models.User) table.Row {
			return table.Row{
				strconv.Itoa(u.ID),
				u.FullName(),
				u.Username,
				u.Email,
				strconv.Itoa(u.Age),
				u.Company.Name,
			}
		},
		ID: func(u models.User) int { return u.ID },
	}
}

// CatalogCollection renders products.
func CatalogCollection() Collection[models.Product] {
	return Collection[models.Product]{
		Title:   "Catalog",
		Noun:    "products",
		Columns: CatalogColumns(),
		Row: func(p models.Product) table.Row {
			return table.Row{
				strconv.Itoa(p.ID),
				p.Title,
				models.FormatCategoryName(p.Category),
				p.Brand,
				fmt.Sprintf("$%.2f", p.Price),
				fmt.Sprintf("%.1f", p.Rating),
				strconv.Itoa(p.Stock),
			}
		},
		ID:         func(p models.Product) int { return p.ID },
		Categories: true,
	}
}

// App is the interactive dashboard. Each screen is its own Bubble Tea
// program; the coordinators outlive them so a list keeps its search,
// category and page while the operator opens records.
type App struct {
	cfg        *config.Config
	client     *api.Client
	sessions   *session.Manager
	logger     *log.Logger
	people     *listquery.Coordinator[models.User]
	catalog    *listquery.Coordinator[models.Product]
	categories []models.Category
	unsub      func()
	lastUser   string
}

// NewApp wires one coordinator per list view and gates both on the session.
func NewApp(cfg *config.Config, client *api.Client, sessions *session.Manager, logger *log.Logger) *App {
	a := &App{
		cfg:      cfg,
		client:   client,
		sessions: sessions,
		logger:   logger,
	}

	a.people = listquery.New(collections.People(client), listquery.Options{
		Name:        "people",
		PageSize:    cfg.Query.PeoplePageSize,
		Debounce:    cfg.Query.Debounce,
		FormatError: collections.ErrorFormatter("users"),
		Logger:      logger,
	})
	a.catalog = listquery.New(collections.Catalog(client), listquery.Options{
		Name:        "catalog",
		PageSize:    cfg.Query.CatalogPageSize,
		Debounce:    cfg.Query.Debounce,
		FormatError: collections.ErrorFormatter("products"),
		Logger:      logger,
	})

	a.unsub = sessions.Subscribe(func(s session.Status) {
		authed := s == session.Authenticated
		a.people.SetAuthenticated(authed)
		a.catalog.SetAuthenticated(authed)
	})
	return a
}

// Close stops both coordinators.
func (a *App) Close() {
	if a.unsub != nil {
		a.unsub()
	}
	a.people.Close()
	a.catalog.Close()
}

// Run drives login, the dashboard and the list views until the operator quits.
func (a *App) Run(ctx context.Context) error {
	for {
		if a.sessions.Status() != session.Authenticated {
			if err := a.login(ctx); err != nil {
				if errors.Is(err, ErrCancelled) {
					return nil
				}
				return err
			}
		}

		err := a.dashboard(ctx)
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (a *App) login(ctx context.Context) error {
	errMsg := ""
	for {
		creds, err := PromptForCredentials(a.lastUser, errMsg)
		if err != nil {
			return err
		}
		a.lastUser = creds.Username

		err = RunWithSpinner("Signing in...", func() error {
			return a.sessions.Login(ctx, creds.Username, creds.Password)
		})
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrCancelled) {
			return err
		}
		errMsg = "Login failed: " + api.Describe(err)
	}
}

// dashboard runs the menu once and whatever the operator picked.
func (a *App) dashboard(ctx context.Context) error {
	current, ok := a.sessions.Current()
	if !ok {
		return nil
	}

	subtitle := "Welcome, " + current.User.DisplayName()
	if !current.ExpiresAt.IsZero() {
		subtitle += " | session expires " + current.ExpiresAt.Local().Format("15:04")
	}

	choice, err := RunSelector(SelectorConfig{
		Title:    "adminboard",
		Subtitle: subtitle,
		Items:    []string{"People", "Catalog", "Log out", "Quit"},
	})
	if err != nil {
		return err
	}

	switch choice {
	case 0:
		return browse(ctx, a, a.people, PeopleCollection(), a.openUser, nil)
	case 1:
		return browse(ctx, a, a.catalog, CatalogCollection(), a.openProduct, a.pickCategory)
	case 2:
		return a.logout()
	default:
		return errQuit
	}
}

func (a *App) logout() error {
	current, ok := a.sessions.Current()
	if !ok {
		return nil
	}
	confirm, err := ConfirmLogout(current.User.DisplayName())
	if err != nil || !confirm {
		return err
	}
	return a.sessions.Logout()
}

// browse loops over one list view and the screens it hands off to.
// pick is nil for collections without categories.
func browse[T any](ctx context.Context, a *App, coord *listquery.Coordinator[T], coll Collection[T], open func(context.Context, int) error, pick func(context.Context) error) error {
	for {
		res, err := RunList(coll, coord, a.sessions)
		if err != nil {
			return err
		}

		switch res.Action {
		case ListBack, ListSessionEnded:
			return nil
		case ListQuit:
			return errQuit
		case ListOpen:
			if err := open(ctx, res.ID); err != nil {
				return err
			}
		case ListPickCategory:
			if pick == nil {
				continue
			}
			if err := pick(ctx); err != nil {
				return err
			}
		case ListPageSize:
			current := coord.Store().Snapshot().Intent.PageSize
			size, err := PromptForPageSize(a.cfg.Query.PageSizes, current)
			if err != nil {
				return err
			}
			coord.SetPageSize(size)
		}
	}
}

// pickCategory runs the picker and applies the choice to the catalog.
// Categories are fetched once per run.
func (a *App) pickCategory(ctx context.Context) error {
	if a.categories == nil {
		var categories []models.Category
		err := RunWithSpinner("Loading categories...", func() (err error) {
			categories, err = a.client.ListCategories(ctx)
			return err
		})
		if errors.Is(err, ErrCancelled) {
			return nil
		}
		if err != nil {
			if a.logger != nil {
				a.logger.Warn("failed to load categories", "error", err)
			}
			return RunDetail(Card{Title: "Categories", Err: "Failed to load categories: " + api.Describe(err)})
		}
		a.categories = categories
	}

	current := a.catalog.Store().Snapshot().Intent.Category
	slug, chosen, err := RunCategoryPicker(a.categories, current)
	if err != nil || !chosen {
		return err
	}
	a.catalog.SetCategory(slug)
	return nil
}

func (a *App) openUser(ctx context.Context, id int) error {
	var user *models.User
	err := RunWithSpinner("Loading user...", func() (err error) {
		user, err = a.client.GetUser(ctx, id)
		return err
	})
	if errors.Is(err, ErrCancelled) {
		return nil
	}
	if err != nil {
		return RunDetail(Card{Title: fmt.Sprintf("User #%d", id), Err: "Failed to fetch user: " + api.Describe(err)})
	}
	return RunDetail(UserCard(*user))
}

func (a *App) openProduct(ctx context.Context, id int) error {
	var product *models.Product
	err := RunWithSpinner("Loading product...", func() (err error) {
		product, err = a.client.GetProduct(ctx, id)
		return err
	})
	if errors.Is(err, ErrCancelled) {
		return nil
	}
	if err != nil {
		return RunDetail(Card{Title: fmt.Sprintf("Product #%d", id), Err: "Failed to fetch product: " + api.Describe(err)})
	}
	return RunDetail(ProductCard(*product))
}
