package dummydb

import (
	"sync"

	"github.com/KaushalKalal/TrainingManagement-Dashboard/core/module"
	"github.com/KaushalKalal/TrainingManagement-Dashboard/core/user"
)

type (
	DB struct {
		user   *userTable
		code   *codeTable
		module *moduleTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	codeTable struct {
		sync.RWMutex
		table map[string]*user.SecurityCode
	}

	moduleTable struct {
		sync.RWMutex
		table map[string]*module.Module
	}
)

func Open() *DB {
	return &DB{
		user:   &userTable{table: make(map[string]*user.User)},
		code:   &codeTable{table: make(map[string]*user.SecurityCode)},
		module: &moduleTable{table: make(map[string]*module.Module)},
	}
}

func copyStrings(s []string) []string {
	res := make([]string, len(s))
	copy(res, s)
	return res
}
