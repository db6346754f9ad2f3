package repository

import "errors"

// ErrNotFound - записи нет, в том числе если она принадлежит другому владельцу
var ErrNotFound = errors.New("record not found")
