package components

import (
	"medslot/internal/handler"
	"medslot/internal/handler/api"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewBookingHandler,
		api.NewCatalogHandler,
	),
	fx.Invoke(handler.NewRouter),
)
