// Package entity define los tipos de entidad contable que se extraen de
// Directo y su esquema fijo en el almacén de búsqueda.
package entity

// Type describe una entidad contable: cómo pedirla a Directo, dónde
// almacenarla y con qué esquema.
type Type struct {
	// What valor del parámetro "what" del formulario de Directo (singular).
	What string
	// Index nombre de la colección destino (plural).
	Index string
	// KeyField campo de negocio que identifica el documento. Si la fila no lo
	// trae (o viene vacío), el almacén asigna el id y los duplicados se acumulan.
	KeyField string
	// Mapping campo → tipo del almacén (keyword, text, float, date, integer).
	Mapping map[string]string
}

// Tipos de entidad con su esquema declarado. Los campos de fecha se tipan como
// date, los montos como float, las categorías como keyword y el texto libre
// como text. Todos llevan además indexed_at, estampado al cargar.
var (
	Invoices = Type{
		What: "invoice", Index: "invoices", KeyField: "number",
		Mapping: map[string]string{
			"number": "keyword", "date": "date", "duedate": "date",
			"transactiondate": "date", "vatzone": "keyword", "paymentterm": "keyword",
			"country": "keyword", "currency": "keyword", "currencyrate": "float",
			"customercode": "keyword", "customername": "text", "comment": "text",
			"address1": "text", "address2": "text", "address3": "text",
			"salesman": "keyword", "confirmed": "keyword", "netamount": "float",
			"vat": "float", "balance": "float", "totalamount": "float",
			"ts": "date", "indexed_at": "date",
		},
	}

	Customers = Type{
		What: "customer", Index: "customers", KeyField: "code",
		Mapping: map[string]string{
			"code": "keyword", "name": "text", "class": "keyword", "regno": "keyword",
			"type": "keyword", "salesman": "keyword", "country": "keyword",
			"email": "keyword", "address1": "text", "address2": "text",
			"ts": "date", "ts_created": "date", "indexed_at": "date",
		},
	}

	Purchases = Type{
		What: "purchase", Index: "purchases", KeyField: "number",
		Mapping: map[string]string{
			"number": "keyword", "date": "date", "duedate": "date", "sum": "float",
			"supplierinvoiceno": "keyword", "paymentterm": "keyword",
			"supplier": "keyword", "suppliername": "text", "transactiontime": "date",
			"vat": "float", "asset": "keyword", "confirmed": "keyword",
			"ts": "date", "indexed_at": "date",
		},
	}

	Items = Type{
		What: "item", Index: "items", KeyField: "code",
		Mapping: map[string]string{
			"code": "keyword", "name": "text", "class": "keyword", "class_name": "text",
			"unit": "keyword", "salesprice": "float", "vatprice": "float",
			"vatprice1": "float", "vatprice2": "float", "vatprice3": "float",
			"vatprice4": "float", "cost": "float", "closed": "keyword",
			"ts": "date", "tscreated": "date", "indexed_at": "date",
		},
	}

	Projects = Type{
		What: "project", Index: "projects", KeyField: "code",
		Mapping: map[string]string{
			"code": "keyword", "name": "text", "manager": "keyword", "start": "date",
			"end": "date", "master": "keyword", "type": "keyword", "country": "keyword",
			"closed": "keyword", "points": "integer", "createdts": "date",
			"ts": "date", "indexed_at": "date",
		},
	}

	Objects = Type{
		What: "object", Index: "objects", KeyField: "code",
		Mapping: map[string]string{
			"code": "keyword", "name": "text", "type": "keyword", "level": "keyword",
			"ts": "date", "indexed_at": "date",
		},
	}

	// Accounts y Suppliers llevan un esquema mínimo; Directo expone para ellos
	// atributos variables y el resto de campos se resuelve por mapeo dinámico.
	Accounts = Type{
		What: "account", Index: "accounts", KeyField: "code",
		Mapping: map[string]string{
			"code": "keyword", "name": "text", "ts": "date", "indexed_at": "date",
		},
	}

	Suppliers = Type{
		What: "supplier", Index: "suppliers", KeyField: "code",
		Mapping: map[string]string{
			"code": "keyword", "name": "text", "ts": "date", "indexed_at": "date",
		},
	}
)

// All orden determinista de extracción y carga en cada corrida del pipeline.
var All = []Type{Invoices, Customers, Purchases, Items, Projects, Objects, Accounts, Suppliers}

// ByIndex busca un tipo por nombre de colección.
func ByIndex(index string) (Type, bool) {
	for _, t := range All {
		if t.Index == index {
			return t, true
		}
	}
	return Type{}, false
}
