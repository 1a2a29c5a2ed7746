package utmify

import (
	"go.uber.org/fx"
)

var Module = fx.Module("utmify",
	fx.Provide(NewClient),
)
