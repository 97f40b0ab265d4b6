package statistics_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"medtransit/internal/statistics"
	"medtransit/internal/statistics/mocks"
	dErrors "medtransit/pkg/domain-errors"
	"medtransit/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	service *mocks.MockReader
	router  chi.Router
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockReader(s.ctrl)
	s.router = chi.NewRouter()
	statistics.NewHandler(s.service, nil).Register(s.router)
}

func (s *HandlerSuite) TestAgendaStatistics() {
	agendaID := uuid.New()

	s.Run("spanish period alias", func() {
		s.service.EXPECT().
			AgendaStatistics(gomock.Any(), agendaID, statistics.PeriodMonth).
			Return(&statistics.AgendaStatistics{AgendaID: agendaID, Period: statistics.PeriodMonth}, nil)

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/choferes/"+agendaID.String()+"/estadisticas?periodo=mes"))
		testutil.AssertStatusOK(s.T(), rr)
		testutil.AssertJSONContains(s.T(), rr, "periodo", "month")
	})

	s.Run("invalid agenda id", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/choferes/not-a-uuid/estadisticas"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})

	s.Run("invalid period", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/choferes/"+agendaID.String()+"/estadisticas?periodo=decade"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	})

	s.Run("unknown agenda", func() {
		s.service.EXPECT().
			AgendaStatistics(gomock.Any(), agendaID, statistics.PeriodToday).
			Return(nil, dErrors.New(dErrors.CodeNotFound, "agenda not found"))

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/choferes/"+agendaID.String()+"/estadisticas"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
	})
}

func (s *HandlerSuite) TestSummary() {
	s.Run("parses desde and hasta", func() {
		from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)
		s.service.EXPECT().Summary(gomock.Any(), from, to).
			Return(&statistics.Summary{From: "2024-05-01", To: "2024-05-31", Total: 3}, nil)

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/historico-traslados/estadisticas?desde=2024-05-01&hasta=2024-05-31"))
		testutil.AssertStatusOK(s.T(), rr)
		testutil.AssertJSONContains(s.T(), rr, "total", float64(3))
	})

	s.Run("accepts fechaInicio and fechaFin", func() {
		from := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
		s.service.EXPECT().Summary(gomock.Any(), from, time.Time{}).
			Return(&statistics.Summary{}, nil)

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/historico-traslados/estadisticas?fechaInicio=2024-04-01"))
		testutil.AssertStatusOK(s.T(), rr)
	})

	s.Run("no range leaves defaults to the service", func() {
		s.service.EXPECT().Summary(gomock.Any(), time.Time{}, time.Time{}).
			Return(&statistics.Summary{}, nil)

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/historico-traslados/estadisticas"))
		testutil.AssertStatusOK(s.T(), rr)
	})

	s.Run("malformed date", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/historico-traslados/estadisticas?desde=01/05/2024"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	})
}
