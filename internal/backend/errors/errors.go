// Package errors provides the error values of the catalog backend.
package errors

import "errors"

var ErrProductNotFound = errors.New("product not found")
var ErrStoreNotFound = errors.New("store not found")

var ErrList = errors.New("failed to list records")
var ErrFind = errors.New("failed to find record")
var ErrCreate = errors.New("failed to create record")
var ErrUpdate = errors.New("failed to update record")
var ErrDelete = errors.New("failed to delete record")
var ErrAssociation = errors.New("failed to change association")

var ErrTransactionBegin = errors.New("failed to begin transaction")
var ErrTransactionCommit = errors.New("failed to commit transaction")
var ErrTransactionRollback = errors.New("failed to rollback transaction")
