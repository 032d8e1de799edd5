package main

import (
	"database/sql"

	_ "github.com/go-sql-driver/mysql"
	"gopkg.in/gorp.v2"
)

const (
	ProdHost   = "127.0.0.1"
	ProdDbUser = "opdirsvc"

	LocalHost   = "127.0.0.1"
	LocalDbUser = "root"

	DbName = "opdir"
)

var dbmap *gorp.DbMap

func initDB() {
	host := LocalHost
	password := passwords.LOCAL_DB_PW
	user := LocalDbUser

	if env.Production {
		host = ProdHost
		password = passwords.PROD_DB_PW
		user = ProdDbUser
	}

	db, err := sql.Open("mysql", user+":"+password+"@tcp("+host+":3306)/"+DbName)
	if err != nil {
		panic("💥 DB OPEN FAILED: " + err.Error())
	}

	err = db.Ping()
	if err != nil {
		panic("💥 DB PING FAILED: " + err.Error())
	}

	InfoLog.Println("Connected to DB ", host)

	dbmap = &gorp.DbMap{Db: db, Dialect: gorp.MySQLDialect{Engine: "InnoDB", Encoding: "UTF8"}}

	dbmap.AddTableWithName(Company{}, "companies")
	dbmap.AddTableWithName(CompanyIntegration{}, "company_integrations")
	dbmap.AddTableWithName(OAuthTokens{}, "oauth_tokens")

	err = dbmap.CreateTablesIfNotExists()
	if err != nil {
		panic("💥 DB ADD TABLES FAILED")
	}

	go runExecs()
}

func runExecs() {
	dbmap.Exec("CREATE UNIQUE INDEX shortnameUnique ON companies (short_name)")
	dbmap.Exec("CREATE UNIQUE INDEX tokenUnique ON companies (token)")
	dbmap.Exec("ALTER TABLE oauth_tokens ADD COLUMN active TINYINT(1) DEFAULT 1")
	dbmap.Exec("ALTER TABLE oauth_tokens MODIFY refresh_token VARCHAR(1024)")
	dbmap.Exec("ALTER TABLE oauth_tokens MODIFY access_token VARCHAR(10000)")
	dbmap.Exec("ALTER TABLE company_integrations MODIFY settings TEXT")
	dbmap.Exec("ALTER TABLE company_integrations ADD COLUMN authed_username VARCHAR(255)")
	dbmap.Exec("ALTER TABLE company_integrations ADD COLUMN created BIGINT(20) DEFAULT 0")
}
