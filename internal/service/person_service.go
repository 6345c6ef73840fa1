package service

import (
	"context"
	"errors"
	"net/http"

	"anoa.com/homeboard/internal/model"
	"anoa.com/homeboard/internal/repository"
	"anoa.com/homeboard/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PersonService interface {
	Create(ctx context.Context, userID uuid.UUID, name string) (*model.Person, error)
	List(ctx context.Context, userID uuid.UUID) ([]*model.Person, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type personService struct {
	personRepo repository.PersonRepository
}

func NewPersonService(personRepo repository.PersonRepository) PersonService {
	return &personService{personRepo: personRepo}
}

func (s *personService) Create(ctx context.Context, userID uuid.UUID, name string) (*model.Person, error) {
	count, err := s.personRepo.CountByName(ctx, userID, name)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperror.New(http.StatusConflict, "person with this name already exists", apperror.ErrConflict)
	}

	person := &model.Person{
		UserID: userID,
		Name:   name,
	}
	if err := s.personRepo.Create(ctx, person); err != nil {
		return nil, err
	}
	return person, nil
}

func (s *personService) List(ctx context.Context, userID uuid.UUID) ([]*model.Person, error) {
	return s.personRepo.FindAll(ctx, userID)
}

func (s *personService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.personRepo.FindByID(ctx, userID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return err
	}
	return s.personRepo.DeleteCascade(ctx, userID, id)
}
