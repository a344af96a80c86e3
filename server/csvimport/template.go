package csvimport

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/Daskott/contactspro/server/models"
	"github.com/pkg/errors"
)

const template = `title,firstName,lastName,mobile1,mobile2,city,state,pincode
Mr,John,Smith,9876543210,9876543211,Mumbai,Maharashtra,400001
Mrs,Priya,Sharma,8765432109,,Delhi,Delhi,110001
Dr,Arjun,Patel,7654321098,7654321099,Bangalore,Karnataka,560001
Ms,Sneha,Iyer,6543210987,,Chennai,Tamil Nadu,600001
`

var exportHeader = []string{"Title", "First Name", "Last Name", "Mobile 1", "Mobile 2", "City", "State", "Pincode"}

// Template is the sample file offered to users before an upload
func Template() string {
	return template
}

// Export writes contacts as CSV. The header normalizes back to the canonical
// columns, so an export can be uploaded again.
func Export(w io.Writer, contacts []models.Contact) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(exportHeader); err != nil {
		return errors.Wrap(err, "write csv header")
	}

	for _, contact := range contacts {
		err := writer.Write([]string{
			contact.Title,
			contact.FirstName,
			contact.LastName,
			contact.Mobile1,
			contact.Mobile2,
			contact.Address.City,
			contact.Address.State,
			contact.Address.Pincode,
		})
		if err != nil {
			return errors.Wrapf(err, "write contact %v", contact.ID)
		}
	}

	writer.Flush()
	return errors.Wrap(writer.Error(), "flush csv")
}

// ExportString is Export into a string
func ExportString(contacts []models.Contact) (string, error) {
	builder := strings.Builder{}
	if err := Export(&builder, contacts); err != nil {
		return "", err
	}

	return builder.String(), nil
}
