package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shelfmark/shelfmark/internal/auth"
	"github.com/shelfmark/shelfmark/internal/database/books"
	"github.com/shelfmark/shelfmark/internal/demo"
	"github.com/shelfmark/shelfmark/internal/entities"
)

// PagesController renders the server-side HTML pages. Handlers here do
// data assembly and permission redirects only; mutations go through the
// JSON API.
type PagesController struct {
	books    BookStore
	genres   GenreStore
	loans    LoanStore
	wishlist WishlistStore
	reviews  ReviewStore
	requests RequestStore
	users    UserStore
}

func NewPagesController(bookStore BookStore, genreStore GenreStore, loanStore LoanStore, wishlistStore WishlistStore, reviewStore ReviewStore, requestStore RequestStore, userStore UserStore) *PagesController {
	return &PagesController{
		books:    bookStore,
		genres:   genreStore,
		loans:    loanStore,
		wishlist: wishlistStore,
		reviews:  reviewStore,
		requests: requestStore,
		users:    userStore,
	}
}

// baseData assembles the template values every page needs.
func baseData(c *gin.Context, title string) gin.H {
	return gin.H{
		"Title":         title,
		"Authenticated": auth.IsAuthenticated(c),
		"IsAdmin":       auth.IsAdmin(c),
		"Email":         auth.GetEmail(c),
		"CSRFToken":     auth.GetCSRFToken(c),
		"DemoMode":      c.GetBool(demo.ContextKeyDemoMode),
	}
}

// LoginPage renders the login form; signed-in users go to the dashboard.
func (controller *PagesController) LoginPage(c *gin.Context) {
	if auth.IsAuthenticated(c) {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	c.HTML(http.StatusOK, "login.html", baseData(c, "Sign in"))
}

// SignupPage renders the registration form.
func (controller *PagesController) SignupPage(c *gin.Context) {
	if auth.IsAuthenticated(c) {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	c.HTML(http.StatusOK, "signup.html", baseData(c, "Create account"))
}

// DashboardPage shows the signed-in user's activity at a glance.
func (controller *PagesController) DashboardPage(c *gin.Context) {
	userID := auth.GetUserID(c)

	activeLoans, err := controller.loans.ListByUser(userID, true)
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to load dashboard")
		return
	}
	wishlistCount, err := controller.wishlist.CountForUser(userID)
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to load dashboard")
		return
	}
	userRequests, err := controller.requests.ListByUser(userID)
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to load dashboard")
		return
	}

	overdue := 0
	for _, loan := range activeLoans {
		if loan.Status == entities.LoanStatusOverdue {
			overdue++
		}
	}

	data := baseData(c, "Dashboard")
	data["ActiveLoans"] = activeLoans
	data["OverdueCount"] = overdue
	data["WishlistCount"] = wishlistCount
	data["RequestCount"] = len(userRequests)
	c.HTML(http.StatusOK, "dashboard.html", data)
}

// BooksPage renders the catalog with filter controls.
func (controller *PagesController) BooksPage(c *gin.Context) {
	filter := books.Filter{
		Genre:         c.Query("genre"),
		Language:      c.Query("language"),
		AvailableOnly: c.Query("available") == "true",
		Query:         c.Query("q"),
	}
	catalog, err := controller.books.List(filter)
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to load catalog")
		return
	}
	genres, err := controller.genres.List()
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to load catalog")
		return
	}
	languages, err := controller.books.Languages()
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to load catalog")
		return
	}

	data := baseData(c, "Catalog")
	data["Books"] = catalog
	data["Genres"] = genres
	data["Languages"] = languages
	data["Filter"] = filter
	c.HTML(http.StatusOK, "books.html", data)
}

// BookPage renders a single book with its reviews and the viewer's
// relationship to it (wishlisted, borrowed).
func (controller *PagesController) BookPage(c *gin.Context) {
	book, err := controller.books.GetByID(c.Param("id"))
	if err != nil {
		c.HTML(http.StatusNotFound, "not_found.html", baseData(c, "Not found"))
		return
	}

	bookReviews, err := controller.reviews.ListByBook(book.ID)
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to load book")
		return
	}
	average, err := controller.reviews.AverageForBook(book.ID)
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to load book")
		return
	}

	userID := auth.GetUserID(c)
	wishlisted, err := controller.wishlist.Contains(userID, book.ID)
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to load book")
		return
	}
	borrowed, err := controller.loans.HasUserBorrowed(userID, book.ID)
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to load book")
		return
	}

	data := baseData(c, book.Title)
	data["Book"] = book
	data["Reviews"] = bookReviews
	if average != nil {
		data["AverageRating"] = *average
	}
	data["Wishlisted"] = wishlisted
	data["HasBorrowed"] = borrowed
	c.HTML(http.StatusOK, "book_detail.html", data)
}

// MyLoansPage lists the user's loans, current and past.
func (controller *PagesController) MyLoansPage(c *gin.Context) {
	loans, err := controller.loans.ListByUser(auth.GetUserID(c), false)
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to load loans")
		return
	}

	data := baseData(c, "My loans")
	data["Loans"] = loans
	c.HTML(http.StatusOK, "my_loans.html", data)
}

// WishlistPage lists the user's wishlist.
func (controller *PagesController) WishlistPage(c *gin.Context) {
	entries, err := controller.wishlist.ListByUser(auth.GetUserID(c))
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to load wishlist")
		return
	}

	data := baseData(c, "Wishlist")
	data["Entries"] = entries
	c.HTML(http.StatusOK, "wishlist.html", data)
}

// RequestsPage lists the user's book requests.
func (controller *PagesController) RequestsPage(c *gin.Context) {
	userRequests, err := controller.requests.ListByUser(auth.GetUserID(c))
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to load requests")
		return
	}

	data := baseData(c, "My requests")
	data["Requests"] = userRequests
	c.HTML(http.StatusOK, "requests.html", data)
}

// AdminBooksPage renders the catalog management page.
func (controller *PagesController) AdminBooksPage(c *gin.Context) {
	catalog, err := controller.books.List(books.Filter{})
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to load catalog")
		return
	}
	genres, err := controller.genres.List()
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to load catalog")
		return
	}

	data := baseData(c, "Manage books")
	data["Books"] = catalog
	data["Genres"] = genres
	c.HTML(http.StatusOK, "admin_books.html", data)
}

// AdminUsersPage renders the account management page.
func (controller *PagesController) AdminUsersPage(c *gin.Context) {
	users, err := controller.users.List()
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to load users")
		return
	}
	count, err := controller.users.Count()
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to load users")
		return
	}

	data := baseData(c, "Manage users")
	data["Users"] = users
	data["UserCount"] = count
	c.HTML(http.StatusOK, "admin_users.html", data)
}

// AdminRequestsPage renders the request review page.
func (controller *PagesController) AdminRequestsPage(c *gin.Context) {
	allRequests, err := controller.requests.ListAll()
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to load requests")
		return
	}

	data := baseData(c, "Review requests")
	data["Requests"] = allRequests
	c.HTML(http.StatusOK, "admin_requests.html", data)
}
