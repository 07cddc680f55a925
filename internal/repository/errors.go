package repository

import "errors"

// ErrCorrupt - данные в хранилище не удалось разобрать
var ErrCorrupt = errors.New("повреждённые данные")

var ErrClosed = errors.New("хранилище закрыто")
