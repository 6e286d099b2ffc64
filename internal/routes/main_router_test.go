// Файл: internal/routes/main_router_test.go
package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"order-desk/internal/entities"
	"order-desk/internal/integrations/mock"
	"order-desk/internal/listeners"
	"order-desk/internal/metrics"
	"order-desk/internal/repositories"
	"order-desk/internal/services"
	"order-desk/internal/session"
	"order-desk/pkg/constants"
	"order-desk/pkg/cryptoblob"
	"order-desk/pkg/eventbus"
	"order-desk/pkg/service"
	"order-desk/pkg/validation"
)

type noRefresh struct{}

func (noRefresh) RefreshToken(context.Context, string) (string, error) {
	return "", context.DeadlineExceeded
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Body    json.RawMessage `json:"body"`
}

// GatewayTestSuite поднимает шлюз поверх сервера заказов в памяти.
type GatewayTestSuite struct {
	suite.Suite
	Echo     *echo.Echo
	Backend  *mock.MockProvider
	Session  *session.Manager
	Screens  *services.ScreenSet
	Listener *listeners.NotificationListener
}

func (suite *GatewayTestSuite) SetupTest() {
	nopLogger := zap.NewNop()
	bus := eventbus.New(nopLogger)
	m := metrics.New()

	backend := mock.NewMockProvider()
	backend.Categories = []entities.Category{
		{ID: 1, Name: "کارت ویزیت", Stages: []string{"Designing", "Printing", "Completed"}},
	}
	backend.Orders = []entities.Order{
		{ID: 1, OrderName: "card", CustomerName: "Ali", CategoryID: 1, SecretKey: 501, Status: "Printing",
			CreatedAt: time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC)},
		{ID: 2, OrderName: "flyer", CustomerName: "Ali", CategoryID: 1, SecretKey: 502, Status: "Completed"},
	}
	backend.Prices[1] = &entities.PriceRecord{
		OrderID:       1,
		Price:         entities.AmountFrom(decimal.NewFromInt(1500)),
		ReceivePrice:  entities.AmountFrom(decimal.NewFromInt(500)),
		ReminderPrice: entities.AmountFrom(decimal.NewFromInt(1000)),
		DeliveryDate:  null.StringFrom("1403-01-10"),
		CreatedAt:     null.TimeFrom(time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC)),
	}
	backend.Prices[2] = &entities.PriceRecord{
		OrderID:       2,
		Price:         entities.AmountFrom(decimal.NewFromInt(200)),
		ReceivePrice:  entities.AmountFrom(decimal.NewFromInt(200)),
		ReminderPrice: entities.AmountFrom(decimal.Zero),
		DeliveryDate:  null.StringFrom("1403-01-12"),
	}

	mgr := session.NewManager(repositories.NewMemoryCredentialRepository(), cryptoblob.New("TET4-1"),
		service.NewJWTService(), noRefresh{}, bus, m, nopLogger)

	aggregator := services.NewAggregationService(backend, 4, m, nopLogger)
	categories := services.NewCategoryService(backend, repositories.NewMemoryCacheRepository(), time.Minute, nopLogger)
	screens := services.NewScreenSet(services.DefaultScreens(20), services.ControllerDeps{
		Backend:        backend,
		Builder:        services.NewQueryBuilder(validation.New(), nopLogger),
		Aggregator:     aggregator,
		Roles:          mgr,
		Categories:     categories,
		Bus:            bus,
		Metrics:        m,
		Logger:         nopLogger,
		Debounce:       20 * time.Millisecond,
		RequestTimeout: time.Second,
	})
	suite.T().Cleanup(screens.Close)

	listener := listeners.NewNotificationListener(nopLogger)
	listener.Register(bus)

	e := echo.New()
	InitRouter(e, Dependencies{
		Screens:       screens,
		Bills:         services.NewBillService(backend, aggregator, categories, nopLogger),
		Notifications: listener,
		Session:       mgr,
		Metrics:       m,
	}, &Loggers{Main: nopLogger, Auth: nopLogger, Screen: nopLogger, Bill: nopLogger})

	suite.Echo = e
	suite.Backend = backend
	suite.Session = mgr
	suite.Screens = screens
	suite.Listener = listener
}

func (suite *GatewayTestSuite) login(role constants.Role) {
	tok, err := service.GenerateToken("server-secret", 7, time.Now().Add(time.Hour))
	suite.Require().NoError(err)
	suite.Require().NoError(suite.Session.Save(context.Background(), session.Credential{
		AccessToken: tok, RefreshToken: "refresh", Role: role,
	}))
}

func (suite *GatewayTestSuite) do(method, target string, body string) (*httptest.ResponseRecorder, envelope) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	suite.Echo.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func (suite *GatewayTestSuite) TestRequiresSession() {
	rec, env := suite.do(http.MethodGet, "/api/screens/delivery/orders", "")
	suite.Equal(http.StatusUnauthorized, rec.Code)
	suite.False(env.Status)
	suite.NotEmpty(rec.Header().Get("X-Request-ID"))
}

func (suite *GatewayTestSuite) TestListScreens() {
	suite.login(constants.RolePrinter)
	rec, env := suite.do(http.MethodGet, "/api/screens", "")
	suite.Equal(http.StatusOK, rec.Code)

	var screens []map[string]any
	suite.Require().NoError(json.Unmarshal(env.Body, &screens))
	suite.Len(screens, 5)
}

func (suite *GatewayTestSuite) TestReceptionListWithPrices() {
	suite.login(constants.RoleReception)
	rec, env := suite.do(http.MethodGet, "/api/screens/reception/orders?page=1", "")
	suite.Require().Equal(http.StatusOK, rec.Code)

	var view struct {
		State  string `json:"state"`
		Rows   []map[string]any
		Totals map[string]string `json:"totals"`
	}
	suite.Require().NoError(json.Unmarshal(env.Body, &view))
	suite.Equal("ready", view.State)
	suite.Require().Len(view.Rows, 2)
	suite.Equal("1403/01/01", view.Rows[0]["created_at"])
	suite.Equal("1500.00", view.Rows[0]["price"])
	suite.Equal("1700.00", view.Totals["price"])
	suite.Equal("1000.00", view.Totals["reminder_price"])
}

func (suite *GatewayTestSuite) TestListPagination() {
	orders := make([]entities.Order, 45)
	for i := range orders {
		orders[i] = entities.Order{ID: int64(i + 1), OrderName: "order", CustomerName: "Ali", CategoryID: 1, Status: "Completed"}
	}
	suite.Backend.Orders = orders

	suite.login(constants.RoleDelivery)
	rec, env := suite.do(http.MethodGet, "/api/screens/delivery/orders?page=2", "")
	suite.Require().Equal(http.StatusOK, rec.Code)

	var view struct {
		Rows       []map[string]any `json:"rows"`
		Total      int              `json:"total"`
		Pagination struct {
			TotalCount uint64 `json:"total_count"`
			TotalPages int    `json:"total_pages"`
			Page       int    `json:"page"`
			Limit      int    `json:"limit"`
		} `json:"pagination"`
	}
	suite.Require().NoError(json.Unmarshal(env.Body, &view))
	suite.Len(view.Rows, 20)
	suite.Equal(45, view.Total)
	suite.Equal(uint64(45), view.Pagination.TotalCount)
	suite.Equal(3, view.Pagination.TotalPages)
	suite.Equal(2, view.Pagination.Page)
	suite.Equal(20, view.Pagination.Limit)
}

func (suite *GatewayTestSuite) TestInvalidPageIsRejectedLocally() {
	suite.login(constants.RoleReception)
	rec, env := suite.do(http.MethodGet, "/api/screens/reception/orders?page=0", "")
	suite.Equal(http.StatusBadRequest, rec.Code)

	var fields map[string]string
	suite.Require().NoError(json.Unmarshal(env.Body, &fields))
	suite.Contains(fields, "page")

	lists, _ := suite.Backend.Calls()
	suite.Empty(lists)
}

func (suite *GatewayTestSuite) TestUnknownScreen() {
	suite.login(constants.RoleReception)
	rec, _ := suite.do(http.MethodGet, "/api/screens/bill/orders", "")
	suite.Equal(http.StatusNotFound, rec.Code)
}

func (suite *GatewayTestSuite) TestAdminRoleCannotOpenPrinterScreen() {
	suite.login(constants.RoleAdmin)
	rec, _ := suite.do(http.MethodGet, "/api/screens/printer/orders", "")
	suite.Equal(http.StatusForbidden, rec.Code)
}

func (suite *GatewayTestSuite) TestAdvanceOnPrinterScreen() {
	suite.login(constants.RolePrinter)
	rec, env := suite.do(http.MethodPost, "/api/screens/printer/orders/1/advance", "")
	suite.Require().Equal(http.StatusOK, rec.Code)

	var res map[string]any
	suite.Require().NoError(json.Unmarshal(env.Body, &res))
	suite.Equal("Completed", res["status"])

	rec, _ = suite.do(http.MethodPost, "/api/screens/printer/orders/2/advance", "")
	suite.Equal(http.StatusConflict, rec.Code)

	suite.Eventually(func() bool {
		return len(suite.Listener.Recent(10)) == 1
	}, time.Second, 10*time.Millisecond)
}

func (suite *GatewayTestSuite) TestAdvanceOnDeliveryScreen() {
	suite.login(constants.RoleDelivery)
	rec, env := suite.do(http.MethodPost, "/api/screens/delivery/orders/1/advance", "")
	suite.Require().Equal(http.StatusOK, rec.Code)

	var res map[string]any
	suite.Require().NoError(json.Unmarshal(env.Body, &res))
	suite.Equal("Completed", res["status"])

	_, updates := suite.Backend.Calls()
	suite.Require().Len(updates, 1)
	suite.Equal(int64(1), updates[0].OrderID)
	suite.Equal("Completed", updates[0].Status)
}

func (suite *GatewayTestSuite) TestAdvanceNotAllowedOnReception() {
	suite.login(constants.RoleReception)
	rec, _ := suite.do(http.MethodPost, "/api/screens/reception/orders/1/advance", "")
	suite.Equal(http.StatusForbidden, rec.Code)
	_, updates := suite.Backend.Calls()
	suite.Empty(updates)
}

func (suite *GatewayTestSuite) TestCompleteRemainder() {
	suite.login(constants.RoleReception)
	rec, env := suite.do(http.MethodPost, "/api/screens/reception/orders/1/complete", "")
	suite.Require().Equal(http.StatusOK, rec.Code)

	var res map[string]any
	suite.Require().NoError(json.Unmarshal(env.Body, &res))
	suite.Equal("0.00", res["reminder_price"])
	suite.Equal("1500.00", res["receive_price"])
}

func (suite *GatewayTestSuite) TestBillJSONAndXLSX() {
	suite.login(constants.RoleReception)
	rec, env := suite.do(http.MethodGet, "/api/bill?ids=1,2", "")
	suite.Require().Equal(http.StatusOK, rec.Code)

	var bill struct {
		CustomerName string            `json:"customer_name"`
		Totals       map[string]string `json:"totals"`
		ReceivedAt   string            `json:"received_at"`
		DueAt        string            `json:"due_at"`
	}
	suite.Require().NoError(json.Unmarshal(env.Body, &bill))
	suite.Equal("Ali", bill.CustomerName)
	suite.Equal("1700.00", bill.Totals["price"])
	suite.Equal("1403/01/01", bill.ReceivedAt)
	suite.Equal("1403/01/12", bill.DueAt)

	rec, _ = suite.do(http.MethodGet, "/api/bill?ids=1,2&format=xlsx", "")
	suite.Require().Equal(http.StatusOK, rec.Code)
	f, err := excelize.OpenReader(rec.Body)
	suite.Require().NoError(err)
	defer f.Close()
	suite.NotEmpty(f.GetSheetList())
}

func (suite *GatewayTestSuite) TestBillRefusesBadIDs() {
	suite.login(constants.RoleReception)
	rec, _ := suite.do(http.MethodGet, "/api/bill?ids=abc", "")
	suite.Equal(http.StatusBadRequest, rec.Code)
}

func (suite *GatewayTestSuite) TestDebouncedCriteria() {
	suite.login(constants.RoleReception)
	rec, _ := suite.do(http.MethodPut, "/api/screens/reception/criteria", `{"search":"card"}`)
	suite.Require().Equal(http.StatusAccepted, rec.Code)

	suite.Eventually(func() bool {
		_, env := suite.do(http.MethodGet, "/api/screens/reception", "")
		var view struct {
			State string           `json:"state"`
			Rows  []map[string]any `json:"rows"`
		}
		_ = json.Unmarshal(env.Body, &view)
		return view.State == "ready" && len(view.Rows) == 1
	}, time.Second, 10*time.Millisecond)
}

func (suite *GatewayTestSuite) TestSessionAndLogout() {
	suite.login(constants.RolePrinter)
	rec, env := suite.do(http.MethodGet, "/api/session", "")
	suite.Require().Equal(http.StatusOK, rec.Code)
	suite.Contains(string(env.Body), `"status_list":"Printer"`)

	rec, _ = suite.do(http.MethodDelete, "/api/session", "")
	suite.Equal(http.StatusOK, rec.Code)

	rec, _ = suite.do(http.MethodGet, "/api/session", "")
	suite.Equal(http.StatusUnauthorized, rec.Code)
}

func (suite *GatewayTestSuite) TestMetricsEndpoint() {
	suite.login(constants.RoleReception)
	suite.do(http.MethodGet, "/api/screens/reception/orders", "")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	suite.Echo.ServeHTTP(rec, req)
	suite.Equal(http.StatusOK, rec.Code)
	suite.Contains(rec.Body.String(), "price_lookups_total")
}

func TestGatewaySuite(t *testing.T) {
	suite.Run(t, new(GatewayTestSuite))
}
