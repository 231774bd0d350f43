// Package domain contains the core business entities, value objects, and
// domain logic of the application: users, tasks and the types used to
// filter, sort and paginate task listings. It is independent of any specific
// infrastructure or delivery mechanism.
package domain
