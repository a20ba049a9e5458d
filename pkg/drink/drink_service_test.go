package drink

import (
	migration "Coffee-Shop-Backend/cmd/database/migrate"
	"Coffee-Shop-Backend/domain"
	"Coffee-Shop-Backend/entities"
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type DrinkServiceTestSuite struct {
	suite.Suite
	DB      *gorm.DB
	Service DrinkService
}

func (s *DrinkServiceTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(s.T(), err)
	sqlDB, err := db.DB()
	require.NoError(s.T(), err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(s.T(), migration.Migrate(db))

	s.DB = db
	s.Service = NewDrinkService(NewDrinkRepository(db), zap.NewNop())
}

func (s *DrinkServiceTestSuite) TearDownTest() {
	sqlDB, err := s.DB.DB()
	if err == nil {
		sqlDB.Close()
	}
}

func (s *DrinkServiceTestSuite) create(title string, recipe domain.Recipe) domain.Drink {
	drink, err := s.Service.Create(context.Background(), domain.CreateDrinkRequest{
		Title:  title,
		Recipe: recipe,
	})
	require.NoError(s.T(), err)
	return drink
}

func (s *DrinkServiceTestSuite) TestCreateRoundTrip() {
	recipe := domain.Recipe{{Color: "blue", Name: "water", Parts: 1}}
	created := s.create("water", recipe)
	assert.NotZero(s.T(), created.ID)

	fetched, err := s.Service.Get(context.Background(), created.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "water", fetched.Title)
	assert.Equal(s.T(), recipe, fetched.Recipe)
	assert.Equal(s.T(), recipe, fetched.Long().Recipe)
}

func (s *DrinkServiceTestSuite) TestCreateAssignsUniqueIDs() {
	first := s.create("water", domain.Recipe{{Color: "blue", Name: "water", Parts: 1}})
	second := s.create("latte", domain.Recipe{
		{Color: "brown", Name: "espresso", Parts: 1},
		{Color: "white", Name: "milk", Parts: 3},
	})
	assert.NotEqual(s.T(), first.ID, second.ID)

	drinks, err := s.Service.ListAll(context.Background())
	require.NoError(s.T(), err)
	require.Len(s.T(), drinks, 2)
	assert.Equal(s.T(), "water", drinks[0].Title)
	assert.Equal(s.T(), "latte", drinks[1].Title)
}

func (s *DrinkServiceTestSuite) TestCreateEmptyRecipe() {
	created := s.create("air", domain.Recipe{})
	fetched, err := s.Service.Get(context.Background(), created.ID)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), fetched.Recipe)
	assert.NotNil(s.T(), fetched.Long().Recipe)
}

func (s *DrinkServiceTestSuite) TestCreateMissingTitle() {
	_, err := s.Service.Create(context.Background(), domain.CreateDrinkRequest{
		Title:  "   ",
		Recipe: domain.Recipe{},
	})
	assert.ErrorIs(s.T(), err, domain.ErrUnprocessable)
	assert.ErrorIs(s.T(), err, domain.ErrMissingTitle)
}

func (s *DrinkServiceTestSuite) TestCreateMissingRecipe() {
	_, err := s.Service.Create(context.Background(), domain.CreateDrinkRequest{Title: "water"})
	assert.ErrorIs(s.T(), err, domain.ErrUnprocessable)
}

func (s *DrinkServiceTestSuite) TestCreateDuplicateTitle() {
	s.create("water", domain.Recipe{})
	_, err := s.Service.Create(context.Background(), domain.CreateDrinkRequest{
		Title:  "water",
		Recipe: domain.Recipe{},
	})
	assert.ErrorIs(s.T(), err, domain.ErrUnprocessable)
}

func (s *DrinkServiceTestSuite) TestUpdateTitleOnly() {
	recipe := domain.Recipe{{Color: "blue", Name: "water", Parts: 1}}
	created := s.create("water", recipe)

	title := "sparkling water"
	updated, err := s.Service.Update(context.Background(), created.ID, domain.UpdateDrinkRequest{Title: &title})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), created.ID, updated.ID)
	assert.Equal(s.T(), "sparkling water", updated.Title)
	assert.Equal(s.T(), recipe, updated.Recipe)
}

func (s *DrinkServiceTestSuite) TestUpdateRecipeOnly() {
	created := s.create("water", domain.Recipe{{Color: "blue", Name: "water", Parts: 1}})

	recipe := domain.Recipe{{Color: "green", Name: "matcha", Parts: 2}}
	updated, err := s.Service.Update(context.Background(), created.ID, domain.UpdateDrinkRequest{Recipe: recipe})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "water", updated.Title)
	assert.Equal(s.T(), recipe, updated.Recipe)

	fetched, err := s.Service.Get(context.Background(), created.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), recipe, fetched.Recipe)
}

func (s *DrinkServiceTestSuite) TestUpdateNotFound() {
	title := "ghost"
	_, err := s.Service.Update(context.Background(), 404, domain.UpdateDrinkRequest{Title: &title})
	assert.ErrorIs(s.T(), err, domain.ErrDrinkNotFound)
}

func (s *DrinkServiceTestSuite) TestUpdateBlankTitle() {
	created := s.create("water", domain.Recipe{})
	title := ""
	_, err := s.Service.Update(context.Background(), created.ID, domain.UpdateDrinkRequest{Title: &title})
	assert.ErrorIs(s.T(), err, domain.ErrUnprocessable)
}

func (s *DrinkServiceTestSuite) TestDelete() {
	created := s.create("water", domain.Recipe{})
	kept := s.create("tea", domain.Recipe{})

	id, err := s.Service.Delete(context.Background(), created.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), created.ID, id)

	drinks, err := s.Service.ListAll(context.Background())
	require.NoError(s.T(), err)
	require.Len(s.T(), drinks, 1)
	assert.Equal(s.T(), kept.ID, drinks[0].ID)

	_, err = s.Service.Delete(context.Background(), created.ID)
	assert.ErrorIs(s.T(), err, domain.ErrDrinkNotFound)
}

func (s *DrinkServiceTestSuite) TestListCorruptRecipe() {
	require.NoError(s.T(), s.DB.Create(&entities.Drink{Title: "broken", Recipe: "not json"}).Error)
	_, err := s.Service.ListAll(context.Background())
	assert.ErrorIs(s.T(), err, domain.ErrUnprocessable)
}

func TestDrinkServiceTestSuite(t *testing.T) {
	suite.Run(t, new(DrinkServiceTestSuite))
}

type failingRepository struct {
	DrinkRepository
	err error
}

func (r failingRepository) GetDrinks(ctx context.Context) ([]*entities.Drink, error) {
	return nil, r.err
}

func (r failingRepository) GetDrinkByID(ctx context.Context, id uint) (*entities.Drink, error) {
	return nil, r.err
}

func TestDrinkService_StoreOutage(t *testing.T) {
	outage := errors.New("connection refused")
	service := NewDrinkService(failingRepository{err: outage}, zap.NewNop())

	_, err := service.ListAll(context.Background())
	assert.ErrorIs(t, err, outage)

	_, err = service.Delete(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrUnprocessable)
	assert.NotErrorIs(t, err, domain.ErrDrinkNotFound)
}

func TestDrinkService_NotFoundFromRepository(t *testing.T) {
	service := NewDrinkService(failingRepository{err: gorm.ErrRecordNotFound}, zap.NewNop())

	_, err := service.Get(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrDrinkNotFound)
}
