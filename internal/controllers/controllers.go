package controllers

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrBadRequest    = errors.New("bad request")
	ErrInvalidURL    = errors.New("invalid url")
	ErrTooManyGames  = errors.New("too many games")
	ErrGetGames      = errors.New("failed to get games")
	ErrGetGame       = errors.New("failed to get game")
	ErrRender        = errors.New("failed to render page")
	ErrPartialCreate = errors.New("partial failure in create")
	ErrExists        = errors.New("already exists")
	ErrCreate        = errors.New("failed to create")
	ErrUpdate        = errors.New("failed to update")
	ErrEncoding      = errors.New("failed to encode")
	ErrImport        = errors.New("failed to import")
)
