package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/useraccounts/internal/client/models"
)

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

// renderUsers prints the users table: username, creation date and id.
func renderUsers(w io.Writer, users []models.User) error {
	if len(users) == 0 {
		_, err := fmt.Fprintln(w, "No users found.")
		return err
	}
	tw := newTabWriter(w)
	fmt.Fprintln(tw, "USERNAME\tCREATION DATE\tID")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", u.Username, u.CreationDate, u.ID)
	}
	return tw.Flush()
}

func renderUser(w io.Writer, u *models.User) error {
	birthday := u.BirthdayOrEmpty()
	if birthday == "" {
		birthday = "N/A"
	}
	tw := newTabWriter(w)
	fmt.Fprintf(tw, "User Profile:\t%s\n", u.Username)
	fmt.Fprintf(tw, "ID:\t%d\n", u.ID)
	fmt.Fprintf(tw, "Username:\t%s\n", u.Username)
	fmt.Fprintf(tw, "Creation Date:\t%s\n", u.CreationDate)
	fmt.Fprintf(tw, "Status:\t%s\n", u.Status)
	fmt.Fprintf(tw, "Birthday:\t%s\n", birthday)
	return tw.Flush()
}

type status struct {
	Route      string
	Server     string
	Storage    string
	Persistent bool
	LoggedIn   bool
	UserID     int64
	ExpiresAt  time.Time
	HasExpiry  bool
}

func renderStatus(w io.Writer, st status) error {
	tw := newTabWriter(w)
	if st.LoggedIn {
		fmt.Fprintf(tw, "Session:\tlogged in as user #%d\n", st.UserID)
		if st.HasExpiry {
			fmt.Fprintf(tw, "Token expires:\t%s\n", st.ExpiresAt.Local().Format(time.DateTime))
		}
	} else {
		fmt.Fprintln(tw, "Session:\tnot logged in")
	}
	fmt.Fprintf(tw, "Screen:\t%s\n", st.Route)
	fmt.Fprintf(tw, "Server:\t%s\n", st.Server)
	if st.Persistent {
		fmt.Fprintf(tw, "Cache:\t%s\n", st.Storage)
	} else {
		fmt.Fprintln(tw, "Cache:\tin memory (not persisted)")
	}
	return tw.Flush()
}
