// Package logger builds *slog.Logger values for the service.
//
// New takes functional options: an environment preset (WithEnvironment,
// WithDevelopment, WithStaging, WithProduction), format and level overrides,
// static attributes, and context extractors. Extractors run on every
// *Context call, so values such as the request id stored by the HTTP
// middleware show up without being passed explicitly:
//
//	log := logger.New(
//		logger.WithEnvironment(os.Getenv("APP_ENV"), "usermgmt"),
//		logger.WithContextValue("request_id", middleware.RequestIDKey),
//	)
//	log.InfoContext(r.Context(), "verification email sent",
//		logger.UserID(u.ID),
//		logger.Template("email_verification"),
//	)
//
// The attribute helpers in attr.go keep key names consistent. Error and
// Errors return an empty attribute for nil errors, so they can be passed
// unconditionally.
package logger
