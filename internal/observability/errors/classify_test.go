package errors

import (
	goerrors "errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/target/userdesk/internal/errors"
)

func TestClassify(t *testing.T) {
	assert.Empty(t, Classify(nil))
	assert.Equal(t, "upstream", Classify(fmt.Errorf("list: %w", apperrors.Upstream("status 502"))))
	assert.Equal(t, "timeout", Classify(apperrors.Wrap(goerrors.New("x"), apperrors.ErrCodeTimeout, "slow")))
	assert.Equal(t, "errors_errorstring", Classify(goerrors.New("plain")))

	// url.Error wraps its cause, so the innermost type wins.
	assert.Equal(t, "errors_errorstring", Classify(&url.Error{Op: "Get", URL: "http://x", Err: goerrors.New("refused")}))
}
