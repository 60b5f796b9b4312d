package compliance

import "errors"

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrMalformedPayload = errors.New("malformed webhook payload")
	ErrUnknownTopic     = errors.New("unknown webhook topic")
	ErrHandlerFailure   = errors.New("compliance handler failed")
)
