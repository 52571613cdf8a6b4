package core

import (
	"testing"

	"orgdirectory/testutil"
)

func TestCoreDoesNotRegisterSQLDrivers(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.SQLDriverImportForbidden, "drivers are registered by the persistence backends")
}
