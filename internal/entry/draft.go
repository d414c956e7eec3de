package entry

import (
	"fmt"
	"strings"
	"time"

	"github.com/vbonduro/fieldinspect/internal/domain"
)

const (
	dateLayout = "02.01.2006"
	timeLayout = "15:04"
)

// Draft is the in-progress form. Zero value is an empty form; NewDraft
// pre-fills the work date and time.
type Draft struct {
	Settlement  string   `json:"settlement"`
	Street      string   `json:"street"`
	House       string   `json:"house"`
	Apartment   string   `json:"apartment"`
	Room        string   `json:"room"`
	MeterNumber string   `json:"meterNumber"`
	WorkDate    string   `json:"workDate"`
	WorkTime    string   `json:"workTime"`
	Inspector1  string   `json:"inspector1"`
	Inspector2  string   `json:"inspector2"`
	PhotoURIs   []string `json:"photoUris"`

	workType   domain.WorkType
	workResult domain.WorkResult
	access     domain.Access
}

func NewDraft(now time.Time) Draft {
	return Draft{
		WorkDate: now.Format(dateLayout),
		WorkTime: now.Format(timeLayout),
	}
}

func (d *Draft) WorkType() domain.WorkType     { return d.workType }
func (d *Draft) WorkResult() domain.WorkResult { return d.workResult }
func (d *Draft) Access() domain.Access         { return d.access }

// SetWorkType selects the work type and always clears the work result, since
// the set of allowed results depends on the type.
func (d *Draft) SetWorkType(t domain.WorkType) error {
	if !t.Valid() {
		return &domain.ValidationError{
			Fields: []string{"workType"},
			Err:    fmt.Errorf("%w: %q", domain.ErrUnknownWorkType, t),
		}
	}
	d.workType = t
	d.workResult = ""
	d.access = domain.AccessUnset
	return nil
}

// SetWorkResult selects a result allowed for the current work type and
// records its access classification.
func (d *Draft) SetWorkResult(r domain.WorkResult) error {
	opt, ok := d.workType.Option(r)
	if !ok {
		return &domain.ValidationError{
			Fields: []string{"workResult"},
			Err:    fmt.Errorf("%w: %q for %q", domain.ErrResultNotAllowed, r, d.workType),
		}
	}
	d.workResult = opt.Value
	d.access = opt.Access
	return nil
}

// AllowedResults is the result picker's content: empty until a work type is
// chosen.
func (d *Draft) AllowedResults() []domain.ResultOption {
	return d.workType.Results()
}

// AddPhotos appends photo paths in capture order.
func (d *Draft) AddPhotos(uris ...string) {
	d.PhotoURIs = append(d.PhotoURIs, uris...)
}

// RemovePhoto drops the pending photo at index i and returns its path.
func (d *Draft) RemovePhoto(i int) (string, error) {
	if i < 0 || i >= len(d.PhotoURIs) {
		return "", &domain.ValidationError{
			Fields: []string{"photo"},
			Err:    fmt.Errorf("photo index %d out of range [0,%d)", i, len(d.PhotoURIs)),
		}
	}
	uri := d.PhotoURIs[i]
	d.PhotoURIs = append(d.PhotoURIs[:i:i], d.PhotoURIs[i+1:]...)
	return uri, nil
}

// Validate checks the required fields and returns a *domain.ValidationError
// naming every missing one.
func (d *Draft) Validate() error {
	var missing []string
	required := []struct {
		name  string
		value string
	}{
		{"settlement", d.Settlement},
		{"street", d.Street},
		{"house", d.House},
		{"apartment", d.Apartment},
		{"meterNumber", d.MeterNumber},
		{"workType", string(d.workType)},
		{"workResult", string(d.workResult)},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if strings.TrimSpace(d.Inspector1) == "" && strings.TrimSpace(d.Inspector2) == "" {
		missing = append(missing, "inspector")
	}
	if len(missing) > 0 {
		return &domain.ValidationError{Fields: missing}
	}
	return nil
}

// Clone returns a deep copy.
func (d Draft) Clone() Draft {
	d.PhotoURIs = append([]string(nil), d.PhotoURIs...)
	return d
}

// toEntry copies the draft verbatim into an entry stamped at ts.
func (d *Draft) toEntry(ts time.Time) domain.Entry {
	return domain.Entry{
		Settlement:  d.Settlement,
		Street:      d.Street,
		House:       d.House,
		Apartment:   d.Apartment,
		Room:        d.Room,
		MeterNumber: d.MeterNumber,
		WorkDate:    d.WorkDate,
		WorkTime:    d.WorkTime,
		WorkType:    d.workType,
		WorkResult:  d.workResult,
		Access:      d.access,
		Inspector1:  d.Inspector1,
		Inspector2:  d.Inspector2,
		PhotoURIs:   append([]string(nil), d.PhotoURIs...),
		Timestamp:   ts,
	}
}
