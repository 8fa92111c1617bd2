package routes

import (
	"database/sql"

	"github.com/labstack/echo/v4"

	adminControllers "github.com/avaldez21/clinica-backend/internal/admin/controllers"
	adminServices "github.com/avaldez21/clinica-backend/internal/admin/services"
	authControllers "github.com/avaldez21/clinica-backend/internal/auth/controllers"
	authServices "github.com/avaldez21/clinica-backend/internal/auth/services"
	citasControllers "github.com/avaldez21/clinica-backend/internal/citas/controllers"
	citasServices "github.com/avaldez21/clinica-backend/internal/citas/services"
	clinicoControllers "github.com/avaldez21/clinica-backend/internal/clinico/controllers"
	clinicoServices "github.com/avaldez21/clinica-backend/internal/clinico/services"
	"github.com/avaldez21/clinica-backend/internal/common/authz"
	"github.com/avaldez21/clinica-backend/internal/common/middlewares"
	pacientesControllers "github.com/avaldez21/clinica-backend/internal/pacientes/controllers"
	pacientesServices "github.com/avaldez21/clinica-backend/internal/pacientes/services"
	"github.com/avaldez21/clinica-backend/ws"
)

// Init wires every service, controller and route group.
func Init(e *echo.Echo, db *sql.DB, hub *ws.Hub) {
	authService := authServices.NewAuthService(db)
	diagnosticoService := clinicoServices.NewDiagnosticoService(db)
	tratamientoService := clinicoServices.NewTratamientoService(db)
	historialService := clinicoServices.NewHistorialService(db)
	citaService := citasServices.NewCitaService(db, hub)
	medicoService := citasServices.NewMedicoService(db)
	pacienteService := pacientesServices.NewPacienteService(db)
	usuarioService := adminServices.NewUsuarioService(db)

	authController := authControllers.NewAuthController(authService)
	diagnosticoController := clinicoControllers.NewDiagnosticoController(diagnosticoService)
	tratamientoController := clinicoControllers.NewTratamientoController(tratamientoService)
	historialController := clinicoControllers.NewHistorialController(historialService)
	citaController := citasControllers.NewCitaController(citaService)
	medicoController := citasControllers.NewMedicoController(medicoService)
	pacienteController := pacientesControllers.NewPacienteController(pacienteService)
	usuarioController := adminControllers.NewUsuarioController(usuarioService)

	api := e.Group("/api")

	// autenticacion
	api.POST("/login", authController.Login)
	api.GET("/session", authController.CheckSession, middlewares.JWTMiddleware())

	// diagnosticos: listing/detail for medico+paciente, writes medico only
	diagnosticos := api.Group("/diagnosticos", middlewares.JWTMiddleware())
	diagnosticos.GET("", diagnosticoController.List,
		middlewares.RequireRole(authz.RolMedico, authz.RolPaciente))
	diagnosticos.GET("/:id", diagnosticoController.Get,
		middlewares.RequireRole(authz.RolMedico, authz.RolPaciente))
	diagnosticos.POST("", diagnosticoController.Create,
		middlewares.RequireRole(authz.RolMedico, authz.RolPaciente))
	diagnosticos.PUT("/:id", diagnosticoController.Update,
		middlewares.RequireRole(authz.RolMedico, authz.RolPaciente))
	diagnosticos.DELETE("/:id", diagnosticoController.Delete,
		middlewares.RequireRole(authz.RolMedico, authz.RolPaciente))

	// tratamientos
	tratamientos := api.Group("/tratamientos", middlewares.JWTMiddleware())
	tratamientos.GET("", tratamientoController.List,
		middlewares.RequireRole(authz.RolMedico, authz.RolPaciente))
	tratamientos.GET("/:id", tratamientoController.Get,
		middlewares.RequireRole(authz.RolMedico, authz.RolPaciente))
	tratamientos.POST("", tratamientoController.Create,
		middlewares.RequireRole(authz.RolMedico, authz.RolPaciente))
	tratamientos.PUT("/:id", tratamientoController.Update,
		middlewares.RequireRole(authz.RolMedico, authz.RolPaciente))
	tratamientos.POST("/:id/toggle-status", tratamientoController.ToggleEstado,
		middlewares.RequireRole(authz.RolMedico, authz.RolPaciente))
	tratamientos.DELETE("/:id", tratamientoController.Delete,
		middlewares.RequireRole(authz.RolMedico, authz.RolPaciente))

	// vista de paciente
	paciente := api.Group("/paciente", middlewares.JWTMiddleware(),
		middlewares.RequireRole(authz.RolPaciente))
	paciente.GET("/tratamientos", tratamientoController.ListPaciente)
	paciente.GET("/historial", historialController.Get)

	// roster de pacientes (medico)
	medicoPacientes := api.Group("/medico/pacientes", middlewares.JWTMiddleware(),
		middlewares.RequireRole(authz.RolMedico))
	medicoPacientes.GET("", pacienteController.List)
	medicoPacientes.GET("/:id", pacienteController.Get)
	medicoPacientes.POST("", pacienteController.Create)
	medicoPacientes.PUT("/:id", pacienteController.Update)
	medicoPacientes.POST("/:id/toggle-status", pacienteController.ToggleEstado)
	medicoPacientes.DELETE("/:id", pacienteController.Delete)

	// historial clinico (medico)
	api.GET("/historial", historialController.Get, middlewares.JWTMiddleware(),
		middlewares.RequireRole(authz.RolMedico))

	// citas
	citas := api.Group("/citas", middlewares.JWTMiddleware())
	citas.GET("/disponibilidad", citaController.Disponibilidad)
	citas.GET("", citaController.List,
		middlewares.RequireRole(authz.RolMedico, authz.RolPaciente))
	citas.GET("/:id", citaController.Get,
		middlewares.RequireRole(authz.RolMedico, authz.RolPaciente))
	citas.POST("", citaController.Create,
		middlewares.RequireRole(authz.RolMedico, authz.RolPaciente))
	citas.POST("/:id/confirmar", citaController.Confirmar,
		middlewares.RequireRole(authz.RolMedico))
	citas.POST("/:id/completar", citaController.Completar,
		middlewares.RequireRole(authz.RolMedico))
	citas.POST("/:id/cancelar", citaController.Cancelar,
		middlewares.RequireRole(authz.RolMedico, authz.RolPaciente))

	// listados publicos para usuarios autenticados
	api.GET("/medicos", medicoController.ListMedicos, middlewares.JWTMiddleware())
	api.GET("/especialidades", medicoController.ListEspecialidades, middlewares.JWTMiddleware())

	// administracion de usuarios
	admin := api.Group("/admin", middlewares.JWTMiddleware(),
		middlewares.RequireRole(authz.RolAdministrador))
	admin.GET("/usuarios", usuarioController.List)
	admin.POST("/usuarios", usuarioController.Create)
	admin.POST("/usuarios/:id/toggle-status", usuarioController.ToggleActivo)
	admin.POST("/usuarios/:id/reset-password", usuarioController.ResetPassword)

	// notificaciones de citas
	e.GET("/ws/citas", ws.ServeWS(hub), middlewares.JWTMiddleware())
}
