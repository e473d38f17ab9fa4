package index

import (
	"database/sql"
	"regexp"
	"sync"

	sqlite3 "github.com/mattn/go-sqlite3"
)

// driverName is a sqlite3 driver variant whose connections carry a REGEXP
// function, so regex fallback queries run inside the store instead of
// post-filtering rows in Go.
const driverName = "sqlite3_raido"

// regexpCache avoids recompiling the pattern for every row of a query.
var regexpCache sync.Map // string -> *regexp.Regexp

func regexpMatch(pattern, value string) (bool, error) {
	if cached, ok := regexpCache.Load(pattern); ok {
		return cached.(*regexp.Regexp).MatchString(value), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, err
	}
	regexpCache.Store(pattern, re)
	return re.MatchString(value), nil
}

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("regexp", regexpMatch, true)
		},
	})
}
