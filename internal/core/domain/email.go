package domain

// EmailMessage is one of the templated messages the notifier can deliver.
type EmailMessage interface {
	TemplateName() string
}

type RegisterConfirmation struct {
	Code string
}

func (RegisterConfirmation) TemplateName() string { return "register_confirmation" }

type RegisterFinished struct {
	FirstName string
	LastName  string
}

func (RegisterFinished) TemplateName() string { return "register_finished" }
