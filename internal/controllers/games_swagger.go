package controllers

// PlayGame godoc
// @Summary      Страница игры
// @Description  Отдаёт HTML-страницу с точкой монтирования, id которой равен slug игры
// @Tags         play
// @Produce      html
// @Param        slug  path      string  true  "Slug игры"
// @Success      200   {string}  string
// @Failure      404   {string}  string
// @Failure      500   {string}  string
// @Router       /games/{slug} [get]
func PlayGame() {}

// PlayGameByID godoc
// @Summary      Старая ссылка по ID
// @Description  Перенаправляет на /games/{slug}
// @Tags         play
// @Param        id   path      int  true  "ID игры"
// @Success      301
// @Failure      400  {string}  string
// @Failure      404  {string}  string
// @Router       /games/id/{id} [get]
func PlayGameByID() {}

// GetAllGames godoc
// @Summary      Получить все игры
// @Description  Возвращает список игр, отсортированный по названию
// @Tags         games
// @Produce      json
// @Param        featured  query     bool  false  "Только избранные"
// @Success      200       {array}   controllers.GameResponse
// @Failure      500       {string}  string
// @Router       /api/games [get]
func GetAllGames() {}

// GetGameBySlug godoc
// @Summary      Получить игру по slug
// @Tags         games
// @Produce      json
// @Param        slug  path      string  true  "Slug игры"
// @Success      200   {object}  controllers.GameResponse
// @Failure      404   {string}  string
// @Failure      500   {string}  string
// @Router       /api/games/{slug} [get]
func GetGameBySlug() {}

// CreateGame godoc
// @Summary      Создать игру
// @Description  Если slug не передан, он строится из названия
// @Tags         games
// @Accept       multipart/form-data
// @Produce      json
// @Param        title          formData  string  true   "Название"
// @Param        description    formData  string  true   "Описание"
// @Param        slug           formData  string  false  "Slug"
// @Param        featured       formData  bool    false  "Избранная"
// @Param        thumbnail      formData  file    false  "Обложка"
// @Param        thumbnail_url  formData  string  false  "Ссылка на обложку"
// @Success      201  {object}  controllers.GameResponse
// @Failure      400  {string}  string
// @Failure      409  {string}  string
// @Failure      500  {string}  string
// @Security     ApiKeyAuth
// @Router       /api/games [post]
func CreateGame() {}

// AssignGameSlug godoc
// @Summary      Сменить slug игры
// @Tags         games
// @Accept       json
// @Produce      json
// @Param        id    path      int                           true  "ID игры"
// @Param        body  body      controllers.AssignSlugRequest  true  "Новый slug"
// @Success      200   {object}  controllers.GameResponse
// @Failure      400   {string}  string
// @Failure      404   {string}  string
// @Failure      409   {string}  string
// @Security     ApiKeyAuth
// @Router       /api/games/{id}/slug [put]
func AssignGameSlug() {}

// ImportGames godoc
// @Summary      Импорт игр из Steam или Wiki
// @Description  До 100 игр за запрос. 207, если часть игр не создана
// @Tags         games
// @Accept       json
// @Produce      json
// @Param        body  body      controllers.ImportRequest  true  "Список игр"
// @Success      201   {object}  controllers.ImportResponse
// @Success      207   {object}  controllers.ImportResponse
// @Failure      400   {string}  string
// @Failure      500   {object}  controllers.ImportResponse
// @Security     ApiKeyAuth
// @Router       /api/games/import [post]
func ImportGames() {}
