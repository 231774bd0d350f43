// Package service contains the application use cases for users and tasks.
//
// Services coordinate the domain layer with the stores defined in internal/store.
// They own transaction boundaries, enforce who may act on which resource, and
// emit task events. They depend only on store interfaces, never on a concrete
// database implementation.
//
// Errors returned from services wrap either store sentinels (store.ErrTaskNotFound,
// store.ErrEmailExists, ...), domain errors (domain.ErrValidation), or the
// sentinels in this package, so that the API layer can map them with errors.Is.
package service
