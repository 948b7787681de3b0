// Package dispatch routes an (operation name, argument bag) pair to its
// handler.
//
// The dispatcher resolves the descriptor in the registry, validates the bag,
// runs the bound handler and converts the outcome into an envelope.Envelope.
// Errors never escape: unknown names, invalid arguments, handler errors and
// handler panics all become failure envelopes with a stable code.
//
// Codes are picked in this order: an error in the chain implementing Coded,
// then each registered Classifier, then validate.ValidationError, then
// OPERATION_FAILED.
package dispatch
