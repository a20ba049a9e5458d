package drink

import (
	"Coffee-Shop-Backend/domain"
	"Coffee-Shop-Backend/entities"
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type (
	DrinkService interface {
		ListAll(ctx context.Context) ([]domain.Drink, error)
		Get(ctx context.Context, id uint) (domain.Drink, error)
		Create(ctx context.Context, req domain.CreateDrinkRequest) (domain.Drink, error)
		Update(ctx context.Context, id uint, req domain.UpdateDrinkRequest) (domain.Drink, error)
		Delete(ctx context.Context, id uint) (uint, error)
	}

	drinkService struct {
		drinkRepository DrinkRepository
		logger          *zap.Logger
	}
)

func NewDrinkService(drinkRepository DrinkRepository, logger *zap.Logger) DrinkService {
	return &drinkService{
		drinkRepository: drinkRepository,
		logger:          logger,
	}
}

func (s *drinkService) ListAll(ctx context.Context) ([]domain.Drink, error) {
	rows, err := s.drinkRepository.GetDrinks(ctx)
	if err != nil {
		s.logger.Error("list drinks", zap.Error(err))
		return nil, err
	}

	drinks := make([]domain.Drink, 0, len(rows))
	for _, row := range rows {
		drink, err := toDomain(row)
		if err != nil {
			s.logger.Error("decode stored recipe", zap.Uint("drink_id", row.ID), zap.Error(err))
			return nil, unprocessable(err)
		}
		drinks = append(drinks, drink)
	}
	return drinks, nil
}

func (s *drinkService) Get(ctx context.Context, id uint) (domain.Drink, error) {
	row, err := s.find(ctx, id)
	if err != nil {
		return domain.Drink{}, err
	}
	drink, err := toDomain(row)
	if err != nil {
		return domain.Drink{}, unprocessable(err)
	}
	return drink, nil
}

func (s *drinkService) Create(ctx context.Context, req domain.CreateDrinkRequest) (domain.Drink, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return domain.Drink{}, unprocessable(domain.ErrMissingTitle)
	}
	if req.Recipe == nil {
		return domain.Drink{}, unprocessable(domain.ErrInvalidRecipe)
	}

	recipe, err := req.Recipe.Serialize()
	if err != nil {
		return domain.Drink{}, unprocessable(err)
	}

	row := &entities.Drink{
		Title:  title,
		Recipe: recipe,
	}
	if err := s.drinkRepository.CreateDrink(ctx, row); err != nil {
		s.logger.Warn("create drink", zap.String("title", title), zap.Error(err))
		return domain.Drink{}, unprocessable(err)
	}

	s.logger.Info("drink created", zap.Uint("drink_id", row.ID), zap.String("title", row.Title))
	return domain.Drink{ID: row.ID, Title: row.Title, Recipe: req.Recipe}, nil
}

func (s *drinkService) Update(ctx context.Context, id uint, req domain.UpdateDrinkRequest) (domain.Drink, error) {
	row, err := s.find(ctx, id)
	if err != nil {
		return domain.Drink{}, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return domain.Drink{}, unprocessable(domain.ErrMissingTitle)
		}
		row.Title = title
	}
	if req.Recipe != nil {
		recipe, err := req.Recipe.Serialize()
		if err != nil {
			return domain.Drink{}, unprocessable(err)
		}
		row.Recipe = recipe
	}

	if err := s.drinkRepository.UpdateDrink(ctx, row); err != nil {
		s.logger.Warn("update drink", zap.Uint("drink_id", id), zap.Error(err))
		return domain.Drink{}, unprocessable(err)
	}

	drink, err := toDomain(row)
	if err != nil {
		return domain.Drink{}, unprocessable(err)
	}
	s.logger.Info("drink updated", zap.Uint("drink_id", row.ID))
	return drink, nil
}

func (s *drinkService) Delete(ctx context.Context, id uint) (uint, error) {
	if _, err := s.find(ctx, id); err != nil {
		return 0, err
	}

	if err := s.drinkRepository.DeleteDrink(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, domain.ErrDrinkNotFound
		}
		s.logger.Warn("delete drink", zap.Uint("drink_id", id), zap.Error(err))
		return 0, unprocessable(err)
	}

	s.logger.Info("drink deleted", zap.Uint("drink_id", id))
	return id, nil
}

func (s *drinkService) find(ctx context.Context, id uint) (*entities.Drink, error) {
	row, err := s.drinkRepository.GetDrinkByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDrinkNotFound
		}
		s.logger.Error("get drink", zap.Uint("drink_id", id), zap.Error(err))
		return nil, unprocessable(err)
	}
	return row, nil
}

func toDomain(row *entities.Drink) (domain.Drink, error) {
	recipe, err := domain.ParseRecipe(row.Recipe)
	if err != nil {
		return domain.Drink{}, err
	}
	return domain.Drink{
		ID:     row.ID,
		Title:  row.Title,
		Recipe: recipe,
	}, nil
}

func unprocessable(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrUnprocessable, err)
}
