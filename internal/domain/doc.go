// Package domain contains the core business entities, value objects, and
// domain logic of the application: work items moving through the review
// queue, the images they carry, and the validation rules that keep item
// state consistent. It is independent of any specific infrastructure or
// delivery mechanism.
package domain
