package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/udisondev/gas/internal/data"
	"github.com/udisondev/gas/internal/db"
	"github.com/udisondev/gas/internal/testutil"
)

// DefinitionStoreSuite прогоняет репозиторий против настоящего PostgreSQL.
type DefinitionStoreSuite struct {
	suite.Suite
	db  *db.DB
	dsn string
	ctx context.Context
}

func (s *DefinitionStoreSuite) SetupSuite() {
	s.ctx = testutil.Context(s.T(), 2*time.Minute)
	_, s.dsn = testutil.SetupTestDB(s.T())

	var err error
	s.db, err = db.New(s.ctx, s.dsn)
	s.Require().NoError(err)
}

func (s *DefinitionStoreSuite) TearDownSuite() {
	if s.db != nil {
		s.db.Close()
	}
}

func (s *DefinitionStoreSuite) SetupTest() {
	_, err := s.db.Pool().Exec(s.ctx,
		"TRUNCATE TABLE ability_definitions, effect_definitions, attribute_definitions")
	s.Require().NoError(err)
}

func (s *DefinitionStoreSuite) TestSaveLoadRoundTrip() {
	doc, err := data.ParseDocument([]byte(`
attributes:
  - {id: health, default: 100, min: 0, max: 100, regeneration: true, regen_rate: 1.5, regen_delay: 2}
  - {id: mana, default: 40, min: 0, max: 40}
effects:
  - id: burn
    kind: DurationModifier
    duration: 3
    can_stack: true
    max_stacks: 5
    granted_tags: [status.burning]
    params: {attribute: health, type: flat, value: "-4"}
abilities:
  - id: ignite
    targeting: target
    dimension: 3d
    cost: 10
    cost_attribute: mana
    effects: [burn]
    target_blocked_by_tags: [state.wet]
`))
	s.Require().NoError(err)

	repo := s.db.Definitions()
	s.Require().NoError(repo.Save(s.ctx, doc))

	loaded, err := repo.Load(s.ctx)
	s.Require().NoError(err)
	s.Equal(doc, loaded)

	_, err = data.BuildCatalog(loaded)
	s.NoError(err)
}

func (s *DefinitionStoreSuite) TestSaveReplacesEverything() {
	repo := s.db.Definitions()
	s.Require().NoError(repo.Save(s.ctx, data.Document{
		Attributes: []data.AttributeDoc{{ID: "a", Max: 1}, {ID: "b", Max: 1}},
	}))
	s.Require().NoError(repo.Save(s.ctx, data.Document{
		Attributes: []data.AttributeDoc{{ID: "c", Max: 1}},
	}))

	loaded, err := repo.Load(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(loaded.Attributes, 1)
	s.Equal("c", loaded.Attributes[0].ID)
}

func (s *DefinitionStoreSuite) TestMigrationVersion() {
	v, err := db.MigrationVersion(s.ctx, s.dsn)
	s.Require().NoError(err)
	s.Equal(int64(1), v)

	s.NoError(db.RunMigrations(s.ctx, s.dsn), "up is idempotent")
}

func TestDefinitionStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	suite.Run(t, new(DefinitionStoreSuite))
}
