package domain

import "strings"

// WorkType is the kind of work performed at the site.
type WorkType string

const (
	WorkDisconnect WorkType = "отключение"
	WorkRestrict   WorkType = "ограничение"
	WorkReconnect  WorkType = "возобновление"
	WorkInspect    WorkType = "проверка"
)

// WorkResult is the outcome recorded for a work type.
type WorkResult string

const (
	ResultDisconnected WorkResult = "отключение"
	ResultPaidOnSite   WorkResult = "оплата на месте"
	ResultNoAccess     WorkResult = "недопуск"
	ResultIntact       WorkResult = "не нарушено"
	ResultViolated     WorkResult = "нарушено"
	ResultReconnected  WorkResult = "возобновлено"
	ResultReadingTaken WorkResult = "показания сняты"
)

// Access tells whether the inspector reached the meter. It drives the photo
// name tag.
type Access int

const (
	AccessUnset Access = iota
	AccessGranted
	AccessDenied
)

// PhotoTag is the file name fragment for photos taken under this access.
func (a Access) PhotoTag() string {
	if a == AccessDenied {
		return "дверь"
	}
	return "счетчик"
}

func (a Access) String() string {
	switch a {
	case AccessGranted:
		return "granted"
	case AccessDenied:
		return "denied"
	default:
		return "unset"
	}
}

// ResultOption is one selectable result for a work type.
type ResultOption struct {
	Value  WorkResult
	Access Access
}

// WorkTypes lists every work type in picker order.
func WorkTypes() []WorkType {
	return []WorkType{WorkDisconnect, WorkRestrict, WorkReconnect, WorkInspect}
}

// Results returns the allowed results for t in picker order, or nil for an
// unknown type.
func (t WorkType) Results() []ResultOption {
	switch t {
	case WorkDisconnect:
		return []ResultOption{
			{ResultDisconnected, AccessGranted},
			{ResultPaidOnSite, AccessGranted},
			{ResultNoAccess, AccessDenied},
		}
	case WorkRestrict:
		return []ResultOption{
			{ResultIntact, AccessGranted},
			{ResultViolated, AccessGranted},
		}
	case WorkReconnect:
		return []ResultOption{
			{ResultReconnected, AccessGranted},
			{ResultNoAccess, AccessDenied},
		}
	case WorkInspect:
		return []ResultOption{
			{ResultReadingTaken, AccessGranted},
			{ResultNoAccess, AccessDenied},
		}
	default:
		return nil
	}
}

// Valid reports whether t is one of the known work types.
func (t WorkType) Valid() bool {
	return t.Results() != nil
}

// Option looks up r among the results allowed for t.
func (t WorkType) Option(r WorkResult) (ResultOption, bool) {
	for _, o := range t.Results() {
		if o.Value == r {
			return o, true
		}
	}
	return ResultOption{}, false
}

// ParseWorkType converts picker text to a WorkType, ignoring surrounding
// whitespace.
func ParseWorkType(s string) (WorkType, bool) {
	t := WorkType(strings.TrimSpace(s))
	return t, t.Valid()
}
