package service

import (
	"errors"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	playground "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/validator"
)

var (
	requests   = playground.New(playground.WithRequiredStructEnabled())
	translator ut.Translator
)

func init() {
	eng := en.New()
	translator, _ = ut.New(eng, eng).GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(requests, translator); err != nil {
		panic(err)
	}
}

// checkRequest runs struct-tag validation on an RPC message.
func checkRequest(msg any) error {
	err := requests.Struct(msg)
	if err == nil {
		return nil
	}

	var fieldErrs playground.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return connect.NewError(connect.CodeInvalidArgument, err)
	}

	cerr := connect.NewError(connect.CodeInvalidArgument, errors.New("invalid request"))
	for _, fe := range fieldErrs {
		addDetail(cerr, map[string]any{
			"field":   fe.Namespace(),
			"rule":    fe.Tag(),
			"message": fe.Translate(translator),
		})
	}
	return cerr
}

// toConnectError maps domain errors to Connect codes. Validation failures carry
// one structured detail per violation.
func toConnectError(err error) *connect.Error {
	var cerr *connect.Error
	if errors.As(err, &cerr) {
		return cerr
	}

	var verr *validator.ValidationError
	switch {
	case errors.As(err, &verr):
		cerr = connect.NewError(connect.CodeInvalidArgument, verr)
		for _, v := range verr.Violations {
			addDetail(cerr, violationDetail(v))
		}
		return cerr
	case errors.Is(err, models.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, models.ErrForbidden):
		return connect.NewError(connect.CodePermissionDenied, err)
	case errors.Is(err, models.ErrVersionConflict):
		return connect.NewError(connect.CodeAborted, err)
	case errors.Is(err, models.ErrEmailExists), errors.Is(err, models.ErrAlreadyFriends):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, models.ErrAlreadyDeleted), errors.Is(err, models.ErrNotDeleted):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, auth.ErrWeakPassword):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, auth.ErrInvalidCredentials):
		return connect.NewError(connect.CodeUnauthenticated, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

func violationDetail(v validator.Violation) map[string]any {
	d := map[string]any{
		"code":    string(v.Code),
		"field":   v.Field,
		"message": v.Message,
	}
	if len(v.UserIDs) > 0 {
		ids := make([]any, len(v.UserIDs))
		for i, id := range v.UserIDs {
			ids[i] = id
		}
		d["user_ids"] = ids
	}
	if v.Code == validator.ShareSumMismatch {
		d["sum"] = float64(v.Sum)
		d["difference"] = float64(v.Difference)
	}
	return d
}

func addDetail(cerr *connect.Error, fields map[string]any) {
	s, err := structpb.NewStruct(fields)
	if err != nil {
		slog.Error("Failed to build error detail", "error", err)
		return
	}
	detail, err := connect.NewErrorDetail(s)
	if err != nil {
		slog.Error("Failed to build error detail", "error", err)
		return
	}
	cerr.AddDetail(detail)
}

// ViolationsOf extracts violation details from a Connect error returned by a client.
func ViolationsOf(err error) []map[string]any {
	var cerr *connect.Error
	if !errors.As(err, &cerr) {
		return nil
	}
	var out []map[string]any
	for _, d := range cerr.Details() {
		msg, err := d.Value()
		if err != nil {
			continue
		}
		if s, ok := msg.(*structpb.Struct); ok {
			out = append(out, s.AsMap())
		}
	}
	return out
}
