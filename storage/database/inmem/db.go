// Package inmemdb provides in-memory repositories for tests and local
// development: same semantics as the SQL repositories, no postgres needed.
package inmemdb

import (
	"sync"

	"github.com/dmtshikala/academia/core/academic"
	"github.com/dmtshikala/academia/core/user"
)

type DB struct {
	sync.RWMutex

	users       map[string]*user.User
	mentions    map[string]*academic.Mention
	teachers    map[string]*academic.Teacher
	students    map[string]*academic.Student
	subjects    map[string]*academic.Subject
	enrollments map[string]*academic.Enrollment
	grades      map[string]*academic.Grade
}

func Open() (*DB, error) {
	return &DB{
		users:       make(map[string]*user.User),
		mentions:    make(map[string]*academic.Mention),
		teachers:    make(map[string]*academic.Teacher),
		students:    make(map[string]*academic.Student),
		subjects:    make(map[string]*academic.Subject),
		enrollments: make(map[string]*academic.Enrollment),
		grades:      make(map[string]*academic.Grade),
	}, nil
}
