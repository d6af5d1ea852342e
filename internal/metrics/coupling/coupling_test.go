package coupling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rouffj/pdepend/internal/decl"
	"github.com/rouffj/pdepend/internal/metrics"
	"github.com/rouffj/pdepend/testhelpers"
)

const mailer = `<?php
class Logger {}
class MailException extends Exception {}

class Mailer {
    /** @var Logger */
    protected $logger;

    /**
     * @throws MailException
     */
    public function send(Logger $l): bool {
        $x = new Logger();
        Logger::create();
        $this->logger->log();
        $l->log();
        $l->log();
        helper();
        return true;
    }
}

class Child extends Mailer {
    public function make() { return new Mailer(); }
}

function helper() { return new Mailer(); }

$m = new Mailer();
helper();
`

func typeMetrics(t *testing.T, p *testhelpers.Project, a *Analyzer, name string) metrics.Values {
	t.Helper()
	typ := decl.ResolveType(p.Registry, name)
	require.NotNil(t, typ, name)
	return a.NodeMetrics(typ.ID())
}

func TestCoupling(t *testing.T) {
	p := testhelpers.Decorate(t, testhelpers.PHP("/src/mailer.php", mailer))
	a := New(p.Registry)
	p.Process(t, a)

	assert.Equal(t, metrics.Values{CA: 1, CBO: 0, CE: 0}, typeMetrics(t, p, a, "Logger"))
	assert.Equal(t, metrics.Values{CA: 1, CBO: 0, CE: 0}, typeMetrics(t, p, a, "MailException"))
	// helper() and the unit depend on Mailer; Child is in its hierarchy
	assert.Equal(t, metrics.Values{CA: 2, CBO: 2, CE: 2}, typeMetrics(t, p, a, "Mailer"))
	assert.Equal(t, metrics.Values{CA: 0, CBO: 0, CE: 0}, typeMetrics(t, p, a, "Child"))

	// Logger::create, ->log, $l->log, helper
	assert.Equal(t, metrics.Values{Calls: 4, Fanout: 4}, a.ProjectMetrics())
}

func TestSameHierarchyIsNotCoupling(t *testing.T) {
	p := testhelpers.Decorate(t, testhelpers.PHP("/src/a.php", `<?php
interface Contract {}
class Impl implements Contract {
    public function with(Contract $c): self {
        if ($c instanceof Impl) {}
        return new static();
    }
}
`))
	a := New(p.Registry)
	p.Process(t, a)

	assert.Equal(t, 0.0, typeMetrics(t, p, a, "Impl")[CE])
	assert.Equal(t, 0.0, typeMetrics(t, p, a, "Contract")[CA])
	assert.Equal(t, 0.0, a.ProjectMetrics()[Fanout])
}

func TestCatchCouplesEveryType(t *testing.T) {
	p := testhelpers.Decorate(t, testhelpers.PHP("/src/a.php", `<?php
class Job {
    public function run() {
        try {} catch (NotFound | Timeout $e) {}
    }
}
`))
	a := New(p.Registry)
	p.Process(t, a)

	assert.Equal(t, 2.0, typeMetrics(t, p, a, "Job")[CE])
	assert.Equal(t, 1.0, typeMetrics(t, p, a, "NotFound")[CA])
	assert.Equal(t, 1.0, typeMetrics(t, p, a, "Timeout")[CA])
}

func TestCallsAreCountedPerBody(t *testing.T) {
	p := testhelpers.Decorate(t, testhelpers.PHP("/src/a.php", `<?php
function a() { b(); b(); B(); }
function b() { a(); }
a();
`))
	a := New(p.Registry)
	p.Process(t, a)
	assert.Equal(t, 2.0, a.ProjectMetrics()[Calls])
}

func TestReset(t *testing.T) {
	p := testhelpers.Decorate(t, testhelpers.PHP("/src/mailer.php", mailer))
	a := New(p.Registry)
	p.Process(t, a)
	require.NotZero(t, a.ProjectMetrics()[Fanout])

	a.Reset()
	assert.Equal(t, metrics.Values{Calls: 0, Fanout: 0}, a.ProjectMetrics())
	assert.Empty(t, a.NodeMetrics("missing"))
}
