package handler

import "github.com/greenroute/fulfillment-engine/internal/core/ports"

// toCreateInput maps the HTTP request to the service DTO.
func toCreateInput(r createOrderRequest) ports.CreateOrderInput {
	lines := make([]ports.LineItemInput, 0, len(r.Lines))
	for _, l := range r.Lines {
		lines = append(lines, ports.LineItemInput{
			ProductID:    l.ProductID,
			Quantity:     l.Quantity,
			UnitWeightKg: l.UnitWeightKg,
		})
	}
	return ports.CreateOrderInput{
		CustomerID: r.CustomerID,
		Lines:      lines,
		Destination: ports.AddressInput{
			Line:        r.Destination.Line,
			City:        r.Destination.City,
			ZipCode:     r.Destination.ZipCode,
			CountryCode: r.Destination.CountryCode,
			Coordinates: ports.CoordinatesInput{
				Lat: r.Destination.Coordinates.Lat,
				Lng: r.Destination.Coordinates.Lng,
			},
		},
		Strategy: r.Strategy,
	}
}

func toDecisionResponse(d ports.DecisionView) decisionResponse {
	return decisionResponse{
		WarehouseID: d.WarehouseID,
		CarrierID:   d.CarrierID,
		Strategy:    d.Strategy,
		Cost:        d.Cost,
		Currency:    d.Currency,
		CarbonKg:    d.CarbonKg,
		TransitDays: d.TransitDays,
		DecidedAt:   d.DecidedAt,
	}
}

func toGetOrderResponse(d *ports.OrderDetail) getOrderResponse {
	lines := make([]lineItemRequest, 0, len(d.Lines))
	for _, l := range d.Lines {
		lines = append(lines, lineItemRequest{
			ProductID:    l.ProductID,
			Quantity:     l.Quantity,
			UnitWeightKg: l.UnitWeightKg,
		})
	}

	resp := getOrderResponse{
		OrderID:    d.OrderID,
		CustomerID: d.CustomerID,
		Status:     d.Status,
		Strategy:   d.Strategy,
		Lines:      lines,
		Destination: addressRequest{
			Line:        d.Destination.Line,
			City:        d.Destination.City,
			ZipCode:     d.Destination.ZipCode,
			CountryCode: d.Destination.CountryCode,
			Coordinates: coordinatesRequest{
				Lat: d.Destination.Coordinates.Lat,
				Lng: d.Destination.Coordinates.Lng,
			},
		},
		TotalWeightKg: d.TotalWeightKg,
		CreatedAt:     d.CreatedAt,
		FailureReason: d.FailureReason,
	}
	if d.Decision != nil {
		dec := toDecisionResponse(*d.Decision)
		resp.Decision = &dec
	}
	return resp
}
