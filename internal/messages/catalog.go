package messages

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message/catalog"
)

// 消息键
const (
	KeyServerURLRequired = "server.url_required"
	KeyServerURLInvalid  = "server.url_invalid"
	KeyServerSaved       = "server.saved"
	KeyUnconfigured      = "server.unconfigured"

	KeyLoginMissing   = "login.missing"
	KeyLoginInvalid   = "login.invalid"
	KeyLoginFailed    = "login.failed"
	KeyLoginSucceeded = "login.succeeded"
	KeyLoggedOut      = "login.logged_out"

	KeyMissingFields = "recipe.missing_fields"
	KeyNoIngredients = "recipe.no_ingredients"
	KeyNoSteps       = "recipe.no_steps"

	KeyListFailed = "recipe.list_failed"
	KeyListEmpty  = "recipe.list_empty"
	KeyNotFound   = "recipe.not_found"

	KeyCreateBadRequest    = "recipe.create.bad_request"
	KeyCreateForbidden     = "recipe.create.forbidden"
	KeyCreateConflict      = "recipe.create.conflict"
	KeyCreateUnprocessable = "recipe.create.unprocessable"
	KeyCreateFailed        = "recipe.create.failed"
	KeyCreateSucceeded     = "recipe.create.succeeded"

	KeyUpdateBadRequest = "recipe.update.bad_request"
	KeyUpdateForbidden  = "recipe.update.forbidden"
	KeyUpdateFailed     = "recipe.update.failed"
	KeyUpdateSucceeded  = "recipe.update.succeeded"

	KeyDeleteFailed    = "recipe.delete.failed"
	KeyDeleteSucceeded = "recipe.delete.succeeded"

	KeyNetworkFailed = "network.failed"
)

type entry struct {
	es string
	en string
}

var entries = map[string]entry{
	KeyServerURLRequired: {"Por favor ingrese la URL del servidor", "Please enter the server URL"},
	KeyServerURLInvalid:  {"Ingrese una URL válida que comience con http:// o https://", "Please enter a valid URL starting with http:// or https://"},
	KeyServerSaved:       {"Servidor guardado", "Server saved"},
	KeyUnconfigured:      {"No se configuró la URL del servidor", "Server URL not set"},

	KeyLoginMissing:   {"Por favor ingrese email y contraseña", "Please enter email and password"},
	KeyLoginInvalid:   {"Credenciales inválidas", "Invalid credentials"},
	KeyLoginFailed:    {"Ocurrió un error al iniciar sesión", "An error occurred during login"},
	KeyLoginSucceeded: {"Sesión iniciada", "Logged in"},
	KeyLoggedOut:      {"Sesión cerrada", "Logged out"},

	KeyMissingFields: {"Por favor complete todos los campos obligatorios.", "Please fill in all required fields."},
	KeyNoIngredients: {"Debe ingresar al menos un ingrediente con nombre y cantidad.", "Enter at least one ingredient with name and quantity."},
	KeyNoSteps:       {"Debe ingresar al menos un paso de preparación.", "Enter at least one preparation step."},

	KeyListFailed: {"No se pudieron cargar las recetas.", "Recipes could not be loaded."},
	KeyListEmpty:  {"No tienes recetas creadas.", "You have no recipes yet."},
	KeyNotFound:   {"Receta no encontrada", "Recipe not found"},

	KeyCreateBadRequest:    {"Faltan campos obligatorios", "Required fields are missing"},
	KeyCreateForbidden:     {"Acción no autorizada para su rol", "Action not allowed for your role"},
	KeyCreateConflict:      {"Ya existe una receta con ese nombre. ¿Desea reemplazarla?", "A recipe with that name already exists. Replace it?"},
	KeyCreateUnprocessable: {"Categoría inválida", "Invalid category"},
	KeyCreateFailed:        {"Error interno al guardar la receta", "Internal error while saving the recipe"},
	KeyCreateSucceeded:     {"Receta creada correctamente y enviada para validación", "Recipe created and sent for review"},

	KeyUpdateBadRequest: {"Error en los datos enviados", "The submitted data is invalid"},
	KeyUpdateForbidden:  {"No autorizado para modificar esta receta", "Not allowed to modify this recipe"},
	KeyUpdateFailed:     {"Error interno al guardar los cambios", "Internal error while saving the changes"},
	KeyUpdateSucceeded:  {"Cambios guardados correctamente. La receta fue enviada nuevamente a validación.", "Changes saved. The recipe was sent for review again."},

	KeyDeleteFailed:    {"Error interno al eliminar la receta", "Internal error while deleting the recipe"},
	KeyDeleteSucceeded: {"Receta eliminada correctamente", "Recipe deleted"},

	KeyNetworkFailed: {"Error de red o servidor", "Network or server error"},
}

// buildCatalog 构建 es/en 目录，缺失时回退到西班牙语
func buildCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.Spanish))
	for key, e := range entries {
		// SetString 只在消息语法错误时失败，这里都是纯文本
		_ = b.SetString(language.Spanish, key, e.es)
		_ = b.SetString(language.English, key, e.en)
	}
	return b
}
