//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"garita/internal/access/store"
	"garita/internal/access/store/postgres"
	"garita/internal/domain"
	dErrors "garita/pkg/domainerrors"
	"garita/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pg     *containers.PostgresContainer
	stores *postgres.Stores
	reader *postgres.Reader

	contractorID int64
	userID       int64
	badgeID      int64
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.GetPostgres(s.T())
	s.stores = postgres.New(s.pg.DB)
	s.reader = postgres.NewReader(s.pg.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	err := s.pg.TruncateTables(ctx,
		"historial_gafetes", "ingresos", "lista_negra",
		"gafetes", "contratistas", "usuarios", "empresas",
	)
	s.Require().NoError(err)

	err = s.pg.DB.QueryRowContext(ctx, `
		INSERT INTO contratistas (primer_nombre, primer_apellido, cedula, fecha_vencimiento_praind)
		VALUES ('Carlos', 'Jiménez', '1-2345-6789', now() + interval '30 days')
		RETURNING id
	`).Scan(&s.contractorID)
	s.Require().NoError(err)

	err = s.pg.DB.QueryRowContext(ctx, `
		INSERT INTO usuarios (primer_nombre, primer_apellido, cedula, email, password_hash)
		VALUES ('Laura', 'Mora', '1-1111-1111', 'laura@garita.local', 'x')
		RETURNING id
	`).Scan(&s.userID)
	s.Require().NoError(err)

	err = s.pg.DB.QueryRowContext(ctx, `
		INSERT INTO gafetes (codigo) VALUES ('G-001') RETURNING id
	`).Scan(&s.badgeID)
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) registerEntry() *domain.Entry {
	now := time.Now().UTC().Truncate(time.Second)
	entry := &domain.Entry{
		ContractorID:   &s.contractorID,
		BadgeID:        &s.badgeID,
		Authorization:  domain.AuthorizationAutomatic,
		EntryAt:        &now,
		RegisteredByID: &s.userID,
		Inside:         true,
	}
	err := s.stores.RunInTx(context.Background(), func(st store.Stores) error {
		if err := st.Entries.Create(context.Background(), entry); err != nil {
			return err
		}
		return st.Assignments.Create(context.Background(), &domain.BadgeAssignment{
			BadgeID:      s.badgeID,
			ContractorID: &s.contractorID,
			EntryID:      &entry.ID,
			AssignedAt:   now,
		})
	})
	s.Require().NoError(err)
	return entry
}

func (s *PostgresStoreSuite) TestEntryRoundTrip() {
	ctx := context.Background()
	entry := s.registerEntry()

	found, err := s.stores.Stores().Entries.FindActiveByContractor(ctx, s.contractorID)
	s.Require().NoError(err)
	s.Require().NotNil(found)
	s.Equal(entry.ID, found.ID)
	s.True(found.Inside)
	s.Require().NotNil(found.BadgeID)
	s.Equal(s.badgeID, *found.BadgeID)
}

func (s *PostgresStoreSuite) TestActiveEntryIndexBacksInvariant() {
	ctx := context.Background()
	s.registerEntry()

	now := time.Now().UTC()
	err := s.stores.Stores().Entries.Create(ctx, &domain.Entry{
		ContractorID:  &s.contractorID,
		Authorization: domain.AuthorizationAutomatic,
		EntryAt:       &now,
		Inside:        true,
	})
	s.Equal(dErrors.CodeActiveEntryExists, dErrors.CodeOf(err))
}

func (s *PostgresStoreSuite) TestOpenLoanIndexBacksInvariant() {
	ctx := context.Background()
	s.registerEntry()

	err := s.stores.Stores().Assignments.Create(ctx, &domain.BadgeAssignment{
		BadgeID:    s.badgeID,
		AssignedAt: time.Now().UTC(),
	})
	s.Equal(dErrors.CodeBadgeInUse, dErrors.CodeOf(err))
}

func (s *PostgresStoreSuite) TestExitClosesEntryAndLoan() {
	ctx := context.Background()
	entry := s.registerEntry()

	exitAt := time.Now().UTC().Truncate(time.Second)
	err := s.stores.RunInTx(ctx, func(st store.Stores) error {
		entry.ExitAt = &exitAt
		entry.Inside = false
		entry.ExitRegisteredByID = &s.userID
		if err := st.Entries.Update(ctx, entry); err != nil {
			return err
		}
		loan, err := st.Assignments.FindOpenByEntry(ctx, entry.ID)
		if err != nil {
			return err
		}
		loan.ReturnedAt = &exitAt
		loan.ReturnCondition = domain.ReturnGood
		return st.Assignments.Update(ctx, loan)
	})
	s.Require().NoError(err)

	active, err := s.stores.Stores().Entries.FindActiveByContractor(ctx, s.contractorID)
	s.Require().NoError(err)
	s.Nil(active, "entry no longer active after exit")

	open, err := s.stores.Stores().Assignments.FindOpenByBadge(ctx, s.badgeID)
	s.Require().NoError(err)
	s.Nil(open, "loan closed after exit")
}

func (s *PostgresStoreSuite) TestRollbackLeavesNoRows() {
	ctx := context.Background()
	now := time.Now().UTC()

	err := s.stores.RunInTx(ctx, func(st store.Stores) error {
		if err := st.Entries.Create(ctx, &domain.Entry{
			ContractorID:  &s.contractorID,
			Authorization: domain.AuthorizationAutomatic,
			EntryAt:       &now,
			Inside:        true,
		}); err != nil {
			return err
		}
		return dErrors.New(dErrors.CodeInternal, "boom")
	})
	s.Require().Error(err)

	active, err := s.stores.Stores().Entries.FindActiveByContractor(ctx, s.contractorID)
	s.Require().NoError(err)
	s.Nil(active)
}

func (s *PostgresStoreSuite) TestProjectionResolvesRelations() {
	ctx := context.Background()
	entry := s.registerEntry()

	projection, err := s.reader.GetProjection(ctx, entry.ID)
	s.Require().NoError(err)
	s.Require().NotNil(projection)
	s.Require().NotNil(projection.Contractor)
	s.Equal("Carlos Jiménez", projection.Contractor.FullName)
	s.Require().NotNil(projection.Badge)
	s.Equal("G-001", projection.Badge.Code)
	s.True(projection.Inside)
}

func (s *PostgresStoreSuite) TestContractorBlacklistLoaded() {
	ctx := context.Background()
	_, err := s.pg.DB.ExecContext(ctx, `
		INSERT INTO lista_negra (contratista_id, grupo_riesgo, causa, nivel_riesgo)
		VALUES ($1, 'SECURITY', 'THEFT', 'HIGH')
	`, s.contractorID)
	s.Require().NoError(err)

	contractor, err := s.stores.Stores().Contractors.FindActiveWithBlacklist(ctx, s.contractorID)
	s.Require().NoError(err)
	s.Require().NotNil(contractor)
	s.Require().Len(contractor.Blacklist, 1)
	s.True(contractor.Blacklist[0].Active)
}

func (s *PostgresStoreSuite) TestOverdueLoanSweepQuery() {
	ctx := context.Background()
	_, err := s.pg.DB.ExecContext(ctx, `
		INSERT INTO historial_gafetes (gafete_id, contratista_id, fecha_asignacion)
		VALUES ($1, $2, now() - interval '20 hours')
	`, s.badgeID, s.contractorID)
	s.Require().NoError(err)

	loans, err := s.reader.FindOverdueLoans(ctx, time.Now().Add(-12*time.Hour))
	s.Require().NoError(err)
	s.Require().Len(loans, 1)
	s.Equal(s.badgeID, loans[0].BadgeID)
}
